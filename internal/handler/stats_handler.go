package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/hiretrack/internal/auth"
	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/service"
)

type StatsService interface {
	Candidate(ctx context.Context, actor *domain.User) (*service.CandidateStats, error)
	Recruiter(ctx context.Context, actor *domain.User) (*service.RecruiterStats, error)
}

type StatsHandler struct {
	service StatsService
}

func NewStatsHandler(service StatsService) (*StatsHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("stats service is required")
	}
	return &StatsHandler{service: service}, nil
}

func RegisterStatsRoutes(router fiber.Router, service StatsService) error {
	h, err := NewStatsHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/stats/candidate", h.CandidateStats)
	v1.Get("/stats/recruiter", h.RecruiterStats)

	return nil
}

type candidateStatsResponse struct {
	Total   int64                 `json:"total"`
	ByStage map[string]int        `json:"byStage"`
	Recent  []applicationResponse `json:"recent"`
}

type recruiterStatsResponse struct {
	JobCount          int            `json:"jobCount"`
	TotalApplications int64          `json:"totalApplications"`
	ByStage           map[string]int `json:"byStage"`
	ByJob             map[string]int `json:"byJob"`
}

func (h *StatsHandler) CandidateStats(c *fiber.Ctx) error {
	stats, err := h.service.Candidate(c.Context(), auth.Actor(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(candidateStatsResponse{
		Total:   stats.Total,
		ByStage: stageMapToStrings(stats.ByStage),
		Recent:  toApplicationResponses(stats.Recent),
	})
}

func (h *StatsHandler) RecruiterStats(c *fiber.Ctx) error {
	stats, err := h.service.Recruiter(c.Context(), auth.Actor(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(recruiterStatsResponse{
		JobCount:          stats.JobCount,
		TotalApplications: stats.TotalApplications,
		ByStage:           stageMapToStrings(stats.ByStage),
		ByJob:             stats.ByJob,
	})
}

func stageMapToStrings(byStage map[domain.Stage]int) map[string]int {
	out := make(map[string]int, len(byStage))
	for stage, count := range byStage {
		out[stage.String()] = count
	}
	return out
}
