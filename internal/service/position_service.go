package service

import (
	"cryptoalpha/internal/models"
	"cryptoalpha/internal/repository"
)

// PositionService предоставляет read-only доступ к леджеру позиций
// для API. Открытие и закрытие позиций - прерогатива торгового цикла,
// через REST позиции не создаются и не изменяются.
type PositionService struct {
	positionRepo *repository.PositionRepository
}

// NewPositionService создает новый экземпляр PositionService
func NewPositionService(positionRepo *repository.PositionRepository) *PositionService {
	return &PositionService{
		positionRepo: positionRepo,
	}
}

// GetOpenPositions возвращает все открытые позиции
func (s *PositionService) GetOpenPositions() ([]*models.Position, error) {
	return s.positionRepo.GetOpen()
}

// GetRecentPositions возвращает последние позиции (открытые и закрытые)
func (s *PositionService) GetRecentPositions(limit int) ([]*models.Position, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.positionRepo.GetRecent(limit)
}

// GetPosition возвращает позицию по ID
func (s *PositionService) GetPosition(id int) (*models.Position, error) {
	return s.positionRepo.GetByID(id)
}

// GetOpenPositionCount возвращает количество открытых позиций
func (s *PositionService) GetOpenPositionCount() (int, error) {
	return s.positionRepo.CountOpen()
}
