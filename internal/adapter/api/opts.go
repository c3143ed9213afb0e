package api

import (
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	"github.com/burenotti/go_health_tracker/internal/app/authapp"
	biometricapp "github.com/burenotti/go_health_tracker/internal/app/biometric"
	exerciselogapp "github.com/burenotti/go_health_tracker/internal/app/exerciselog"
	foodlogapp "github.com/burenotti/go_health_tracker/internal/app/foodlog"
	profileapp "github.com/burenotti/go_health_tracker/internal/app/profile"
	streakapp "github.com/burenotti/go_health_tracker/internal/app/streak"
	summaryapp "github.com/burenotti/go_health_tracker/internal/app/summary"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"log/slog"
	"net"
	"strconv"
	"time"
)

type Option func(*Server)

func Addr(host string, port int) Option {
	return func(s *Server) {
		s.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func Timeouts(read, write, idle time.Duration) Option {
	return func(s *Server) {
		s.handler.Server.ReadTimeout = read
		s.handler.Server.WriteTimeout = write
		s.handler.Server.IdleTimeout = idle
	}
}

// Location sets the calendar used when a request omits its date.
func Location(loc *time.Location) Option {
	return func(s *Server) {
		s.location = loc
	}
}

func DBContext(db storage.Beginner) Option {
	return func(s *Server) {
		s.db = db
		s.memStore = nil
	}
}

func MemoryStore(store *memstorage.Store) Option {
	return func(s *Server) {
		s.db = store
		s.memStore = store
	}
}

func Authorizer(a *authapp.Authorizer) Option {
	return func(s *Server) {
		s.authorizer = a
	}
}

func ProfileService(service *profileapp.Service) Option {
	return func(s *Server) {
		s.profileService = service
	}
}

func BiometricService(service *biometricapp.Service) Option {
	return func(s *Server) {
		s.biometricService = service
	}
}

func FoodLogService(service *foodlogapp.Service) Option {
	return func(s *Server) {
		s.foodLogService = service
	}
}

func ExerciseLogService(service *exerciselogapp.Service) Option {
	return func(s *Server) {
		s.exerciseLogService = service
	}
}

func SummaryService(service *summaryapp.Service) Option {
	return func(s *Server) {
		s.summaryService = service
	}
}

func StreakService(service *streakapp.Service) Option {
	return func(s *Server) {
		s.streakService = service
	}
}

func MessageBus(bus unitofwork.MessageBus) Option {
	return func(s *Server) {
		s.msgBus = bus
	}
}
