package service

import (
	"context"
	"fmt"

	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"go.uber.org/zap"
)

const recentApplicationsLimit = 5

// CandidateStats summarizes one candidate's pipeline.
type CandidateStats struct {
	Total   int64
	ByStage map[domain.Stage]int
	Recent  []domain.Application
}

// RecruiterStats summarizes the pipeline across one recruiter's postings.
type RecruiterStats struct {
	JobCount          int
	TotalApplications int64
	ByStage           map[domain.Stage]int
	ByJob             map[string]int
}

// StatsService builds the dashboard aggregates.
type StatsService struct {
	applications repository.ApplicationRepository
	jobs         repository.JobRepository
	logger       *zap.Logger
}

func NewStatsService(
	applications repository.ApplicationRepository,
	jobs repository.JobRepository,
	logger *zap.Logger,
) (*StatsService, error) {
	if applications == nil {
		return nil, fmt.Errorf("application repository is required")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{applications: applications, jobs: jobs, logger: logger}, nil
}

func (s *StatsService) Candidate(ctx context.Context, actor *domain.User) (*CandidateStats, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: actor is required", domain.ErrUnauthorized)
	}

	total, err := s.applications.CountByCandidate(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	counts, err := s.applications.CountByStageForCandidate(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	recent, err := s.applications.ListByCandidate(ctx, actor.ID, recentApplicationsLimit)
	if err != nil {
		return nil, err
	}

	return &CandidateStats{
		Total:   total,
		ByStage: stageCountsToMap(counts),
		Recent:  recent,
	}, nil
}

func (s *StatsService) Recruiter(ctx context.Context, actor *domain.User) (*RecruiterStats, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: actor is required", domain.ErrUnauthorized)
	}

	jobs, err := s.jobs.ListByRecruiter(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	jobIDs := make([]string, 0, len(jobs))
	for i := range jobs {
		jobIDs = append(jobIDs, jobs[i].ID)
	}

	stats := &RecruiterStats{
		JobCount: len(jobs),
		ByStage:  map[domain.Stage]int{},
		ByJob:    map[string]int{},
	}
	if len(jobIDs) == 0 {
		return stats, nil
	}

	total, err := s.applications.CountByJobs(ctx, jobIDs)
	if err != nil {
		return nil, err
	}
	stats.TotalApplications = total

	stageCounts, err := s.applications.CountByStageForJobs(ctx, jobIDs)
	if err != nil {
		return nil, err
	}
	stats.ByStage = stageCountsToMap(stageCounts)

	jobCounts, err := s.applications.CountPerJob(ctx, jobIDs)
	if err != nil {
		return nil, err
	}
	for _, count := range jobCounts {
		stats.ByJob[count.JobID] = count.Count
	}

	return stats, nil
}

func stageCountsToMap(counts []repository.StageCount) map[domain.Stage]int {
	byStage := make(map[domain.Stage]int, len(counts))
	for _, count := range counts {
		byStage[count.Stage] = count.Count
	}
	return byStage
}
