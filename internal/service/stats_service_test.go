package service

import (
	"context"
	"testing"

	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"go.uber.org/zap"
)

func TestCandidateStats(t *testing.T) {
	t.Parallel()

	apps := &fakeApplicationRepo{
		countByCandidateFn: func(ctx context.Context, candidateID string) (int64, error) {
			return 7, nil
		},
		countStageCandidateFn: func(ctx context.Context, candidateID string) ([]repository.StageCount, error) {
			return []repository.StageCount{
				{Stage: domain.StageApplied, Count: 4},
				{Stage: domain.StageInterview, Count: 2},
				{Stage: domain.StageRejected, Count: 1},
			}, nil
		},
		listByCandidateFn: func(ctx context.Context, candidateID string, limit int) ([]domain.Application, error) {
			if limit != recentApplicationsLimit {
				t.Errorf("limit = %d, want %d", limit, recentApplicationsLimit)
			}
			return []domain.Application{{ID: "app-1"}, {ID: "app-2"}}, nil
		},
	}

	svc, err := NewStatsService(apps, &fakeJobRepo{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStatsService() error = %v", err)
	}

	stats, err := svc.Candidate(context.Background(), candidateActor())
	if err != nil {
		t.Fatalf("Candidate() error = %v", err)
	}

	if stats.Total != 7 {
		t.Fatalf("total = %d, want 7", stats.Total)
	}
	if stats.ByStage[domain.StageApplied] != 4 {
		t.Fatalf("applied = %d, want 4", stats.ByStage[domain.StageApplied])
	}
	if stats.ByStage[domain.StageInterview] != 2 {
		t.Fatalf("interview = %d, want 2", stats.ByStage[domain.StageInterview])
	}
	if len(stats.Recent) != 2 {
		t.Fatalf("recent = %d, want 2", len(stats.Recent))
	}
}

func TestRecruiterStats(t *testing.T) {
	t.Parallel()

	var gotJobIDs []string
	jobs := &fakeJobRepo{
		listByRecruiterFn: func(ctx context.Context, recruiterID string) ([]domain.Job, error) {
			return []domain.Job{
				{ID: "job-1", PostedBy: recruiterID},
				{ID: "job-2", PostedBy: recruiterID},
			}, nil
		},
	}
	apps := &fakeApplicationRepo{
		countByJobsFn: func(ctx context.Context, jobIDs []string) (int64, error) {
			gotJobIDs = jobIDs
			return 12, nil
		},
		countStageJobsFn: func(ctx context.Context, jobIDs []string) ([]repository.StageCount, error) {
			return []repository.StageCount{
				{Stage: domain.StageApplied, Count: 8},
				{Stage: domain.StageOffer, Count: 4},
			}, nil
		},
		countPerJobFn: func(ctx context.Context, jobIDs []string) ([]repository.JobCount, error) {
			return []repository.JobCount{
				{JobID: "job-1", Count: 9},
				{JobID: "job-2", Count: 3},
			}, nil
		},
	}

	svc, err := NewStatsService(apps, jobs, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStatsService() error = %v", err)
	}

	stats, err := svc.Recruiter(context.Background(), recruiterActor())
	if err != nil {
		t.Fatalf("Recruiter() error = %v", err)
	}

	if stats.JobCount != 2 {
		t.Fatalf("jobCount = %d, want 2", stats.JobCount)
	}
	if stats.TotalApplications != 12 {
		t.Fatalf("total = %d, want 12", stats.TotalApplications)
	}
	if len(gotJobIDs) != 2 {
		t.Fatalf("jobIDs = %v, want both postings", gotJobIDs)
	}
	if stats.ByStage[domain.StageOffer] != 4 {
		t.Fatalf("offer = %d, want 4", stats.ByStage[domain.StageOffer])
	}
	if stats.ByJob["job-1"] != 9 || stats.ByJob["job-2"] != 3 {
		t.Fatalf("byJob = %v", stats.ByJob)
	}
}

func TestRecruiterStatsNoJobs(t *testing.T) {
	t.Parallel()

	counted := false
	apps := &fakeApplicationRepo{
		countByJobsFn: func(ctx context.Context, jobIDs []string) (int64, error) {
			counted = true
			return 0, nil
		},
	}

	svc, err := NewStatsService(apps, &fakeJobRepo{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStatsService() error = %v", err)
	}

	stats, err := svc.Recruiter(context.Background(), recruiterActor())
	if err != nil {
		t.Fatalf("Recruiter() error = %v", err)
	}

	if stats.JobCount != 0 || stats.TotalApplications != 0 {
		t.Fatalf("stats = %+v, want empty", stats)
	}
	if counted {
		t.Fatal("no aggregation queries should run without postings")
	}
}
