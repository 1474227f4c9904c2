package transport

import (
	"net/http"
	"strconv"

	"github.com/ds124wfegd/railway-reservation/internal/entity"
	"github.com/ds124wfegd/railway-reservation/internal/service"
	"github.com/gin-gonic/gin"
)

type TrainHandler struct {
	trainService service.TrainService
}

func NewTrainHandler(trainService service.TrainService) *TrainHandler {
	return &TrainHandler{trainService: trainService}
}

func (h *TrainHandler) AddTrain(c *gin.Context) {
	var req service.AddTrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	train, err := h.trainService.AddTrain(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "train added",
		Data:    train,
	})
}

func (h *TrainHandler) ListTrains(c *gin.Context) {
	trains := make([]entity.Train, 0)
	for train := range h.trainService.ListTrains(c.Request.Context()) {
		trains = append(trains, train)
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    trains,
		Meta:    ListMeta{Count: len(trains)},
	})
}

func (h *TrainHandler) GetTrain(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		badRequest(c, "invalid train number")
		return
	}

	train, err := h.trainService.GetTrain(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: train})
}
