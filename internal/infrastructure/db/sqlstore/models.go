package sqlstore

import (
	"strconv"
	"time"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

type userModel struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:191;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:32;not null;default:User"`
	CreatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           strconv.FormatUint(uint64(m.ID), 10),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type filmModel struct {
	ID          uint    `gorm:"primaryKey"`
	Title       string  `gorm:"size:255;not null;index"`
	Description *string `gorm:"type:text"`
	ReleaseYear *int
	Director    *string `gorm:"size:255"`
	Producer    *string `gorm:"size:255"`
	ExternalID  *string `gorm:"size:64;uniqueIndex"`
}

func (filmModel) TableName() string { return "films" }

func toFilmModel(f *domain.Film) *filmModel {
	return &filmModel{
		Title:       f.Title,
		Description: f.Description,
		ReleaseYear: f.ReleaseYear,
		Director:    f.Director,
		Producer:    f.Producer,
		ExternalID:  f.ExternalID,
	}
}

func (m *filmModel) toDomain() *domain.Film {
	return &domain.Film{
		ID:          strconv.FormatUint(uint64(m.ID), 10),
		Title:       m.Title,
		Description: m.Description,
		ReleaseYear: m.ReleaseYear,
		Director:    m.Director,
		Producer:    m.Producer,
		ExternalID:  m.ExternalID,
	}
}

// parseID maps a catalog id onto a primary key. Anything that is not a
// positive integer cannot exist.
func parseID(id string) (uint, bool) {
	n, err := strconv.ParseUint(id, 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
