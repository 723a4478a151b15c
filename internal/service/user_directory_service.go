package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-hod-api/internal/models"
)

var errEmptyUpstream = errors.New("upstream returned no data")

// UserFetcher lists managed users from the live directory.
type UserFetcher interface {
	ListUsers(ctx context.Context, filter models.UserFilter) (*models.UserPage, error)
}

// UserDirectoryService serves the user management list with mock fallback.
type UserDirectoryService struct {
	fetcher UserFetcher
	source  *FallbackSource[models.UserPage]
	logger  *zap.Logger
}

// NewUserDirectoryService constructs the service.
func NewUserDirectoryService(fetcher UserFetcher, source *FallbackSource[models.UserPage], logger *zap.Logger) *UserDirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if source == nil {
		source = NewFallbackSource[models.UserPage](FallbackSourceParams{Name: "users", Logger: logger})
	}
	return &UserDirectoryService{fetcher: fetcher, source: source, logger: logger}
}

// List returns one page of users matching filter.
func (s *UserDirectoryService) List(ctx context.Context, filter models.UserFilter) models.Sourced[models.UserPage] {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	filter.Search = strings.TrimSpace(filter.Search)

	var live FetchFunc[models.UserPage]
	if s.fetcher != nil {
		live = func(ctx context.Context) (models.UserPage, error) {
			page, err := s.fetcher.ListUsers(ctx, filter)
			if err != nil {
				return models.UserPage{}, err
			}
			if page == nil {
				return models.UserPage{}, errEmptyUpstream
			}
			return *page, nil
		}
	}
	return s.source.Fetch(ctx, userFilterKey(filter), live, func() models.UserPage {
		return filterUsers(MockUsers(), filter)
	})
}

func userFilterKey(f models.UserFilter) string {
	role := "all"
	if f.Role != nil {
		role = string(*f.Role)
	}
	return fmt.Sprintf("%s:%s:%d:%d", role, strings.ToLower(f.Search), f.Page, f.PageSize)
}

func filterUsers(users []models.ManagedUser, f models.UserFilter) models.UserPage {
	needle := strings.ToLower(f.Search)
	matched := make([]models.ManagedUser, 0, len(users))
	for _, u := range users {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(u.FullName), needle) && !strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		matched = append(matched, u)
	}

	start := (f.Page - 1) * f.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return models.UserPage{
		Users:      matched[start:end],
		Pagination: models.Pagination{Page: f.Page, PageSize: f.PageSize, TotalCount: len(matched)},
	}
}

// MockUsers is the static directory shown while the user service is unreachable.
func MockUsers() []models.ManagedUser {
	lastLogin := time.Date(2024, 9, 2, 7, 30, 0, 0, time.UTC)
	return []models.ManagedUser{
		{ID: "u-1", FullName: "Ratna Wijaya", Email: "ratna.wijaya@sma.local", Role: models.RoleSuperManager, Active: true, LastLogin: &lastLogin},
		{ID: "u-2", FullName: "Hendra Gunawan", Email: "hendra.gunawan@sma.local", Role: models.RoleHOD, Active: true, LastLogin: &lastLogin},
		{ID: "u-3", FullName: "Amina Njoroge", Email: "amina.njoroge@sma.local", Role: models.RoleTeacher, Active: true},
		{ID: "u-4", FullName: "Budi Santoso", Email: "budi.santoso@sma.local", Role: models.RoleTeacher, Active: true},
		{ID: "u-5", FullName: "Claire Dubois", Email: "claire.dubois@sma.local", Role: models.RoleTeacher, Active: false},
		{ID: "u-6", FullName: "Siti Rahma", Email: "siti.rahma@family.test", Role: models.RoleParent, Active: true},
		{ID: "u-7", FullName: "Daniel Novak", Email: "daniel.novak@family.test", Role: models.RoleParent, Active: true},
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
