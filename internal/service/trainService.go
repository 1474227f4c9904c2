package service

import (
	"context"
	"fmt"
	"iter"

	repository "github.com/ds124wfegd/railway-reservation/internal/database/memory"
	"github.com/ds124wfegd/railway-reservation/internal/entity"
	"github.com/sirupsen/logrus"
)

// AddTrainRequest represents the data needed to register a train
type AddTrainRequest struct {
	Number int    `json:"number" binding:"required,min=1"`
	Name   string `json:"name" binding:"required,min=1,max=100"`
	Seats  int    `json:"seats" binding:"min=0,max=10000"`
}

type trainService struct {
	trainRepo repository.TrainRepository
	log       logrus.FieldLogger
}

// NewTrainService creates a new instance of TrainService
func NewTrainService(trainRepo repository.TrainRepository, log logrus.FieldLogger) TrainService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &trainService{
		trainRepo: trainRepo,
		log:       log,
	}
}

func (s *trainService) AddTrain(ctx context.Context, req *AddTrainRequest) (*entity.Train, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", entity.ErrInvalidInput)
	}

	train := &entity.Train{
		Number:         req.Number,
		Name:           req.Name,
		AvailableSeats: req.Seats,
	}

	if err := s.trainRepo.Add(ctx, train); err != nil {
		return nil, fmt.Errorf("failed to add train: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"train_number": train.Number,
		"train_name":   train.Name,
		"seats":        train.Capacity,
	}).Info("Train added")

	return train, nil
}

func (s *trainService) GetTrain(ctx context.Context, number int) (*entity.Train, error) {
	train, err := s.trainRepo.Get(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get train %d: %w", number, err)
	}
	return train, nil
}

func (s *trainService) ListTrains(ctx context.Context) iter.Seq[entity.Train] {
	return s.trainRepo.List(ctx)
}
