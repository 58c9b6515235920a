package recovery

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"shamir/internal/platform/metrics"
	"shamir/internal/recovery/mocks"
	"shamir/internal/share"
	"shamir/internal/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockStore *mocks.MockStore
	metrics   *metrics.Metrics
	logs      *observer.ObservedLogs
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.metrics = metrics.New()

	core, logs := observer.New(zap.DebugLevel)
	s.logs = logs

	svc, err := New(
		WithLogger(zap.New(core)),
		WithMetrics(s.metrics),
		WithStore(s.mockStore),
		WithBasisCacheSize(4),
		WithRunID("run-test"),
	)
	s.Require().NoError(err)
	s.service = svc
}

func classicJob(id string) *share.Job {
	return &share.Job{
		ID:        id,
		Threshold: 3,
		Total:     4,
		Shares: []share.RawShare{
			{X: 1, Base: 10, Digits: "4"},
			{X: 2, Base: 2, Digits: "111"},
			{X: 3, Base: 10, Digits: "12"},
			{X: 6, Base: 4, Digits: "213"},
		},
	}
}

func (s *ServiceSuite) TestNew() {
	s.Run("rejects non-positive cache size", func() {
		_, err := New(WithBasisCacheSize(0))
		s.Error(err)
	})

	s.Run("rejects nil logger", func() {
		_, err := New(WithLogger(nil))
		s.Error(err)
	})

	s.Run("generates a run id", func() {
		svc, err := New()
		s.Require().NoError(err)
		s.NotEmpty(svc.RunID())
	})
}

func (s *ServiceSuite) TestReconstruct() {
	s.Run("records the secret", func() {
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rec store.Record) error {
				s.Equal("classic", rec.JobID)
				s.Equal("3", rec.Secret)
				s.Equal("run-test", rec.RunID)
				s.Equal(3, rec.Threshold)
				s.Equal(4, rec.Total)
				s.Empty(rec.ErrorKind)
				s.Len(rec.Fingerprint, 64)
				return nil
			})

		res := s.service.Reconstruct(context.Background(), classicJob("classic"))
		s.Require().NoError(res.Err)
		s.True(res.OK())
		s.Equal("3", res.Secret.String())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Jobs.WithLabelValues(KindOK)))
		s.Equal(4.0, testutil.ToFloat64(s.metrics.SharesDecoded))
	})

	s.Run("records the failure kind", func() {
		job := &share.Job{
			ID:        "broken",
			Threshold: 3,
			Total:     3,
			Shares: []share.RawShare{
				{X: 1, Base: 10, Digits: "1"},
				{X: 2, Base: 10, Digits: "2"},
				{X: 4, Base: 10, Digits: "5"},
			},
		}
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, rec store.Record) error {
				s.Equal(KindNonInteger, rec.ErrorKind)
				s.Empty(rec.Secret)
				s.Contains(rec.Error, "1/3")
				return nil
			})

		res := s.service.Reconstruct(context.Background(), job)
		s.False(res.OK())
		s.Nil(res.Secret)
		s.Equal(KindNonInteger, Kind(res.Err))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Jobs.WithLabelValues(KindNonInteger)))
		s.NotEmpty(s.logs.FilterMessage("reconstruction failed").All())
	})

	s.Run("store failure does not fail the job", func() {
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		res := s.service.Reconstruct(context.Background(), classicJob("classic"))
		s.Require().NoError(res.Err)
		s.NotEmpty(s.logs.FilterMessage("failed to record outcome").All())
	})

	s.Run("invalid digit", func() {
		job := classicJob("bad-digit")
		job.Shares[1].Digits = "121"
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

		res := s.service.Reconstruct(context.Background(), job)
		s.Equal(KindInvalidDigit, Kind(res.Err))
	})

	s.Run("canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(context.Canceled)

		res := s.service.Reconstruct(ctx, classicJob("late"))
		s.Equal(KindCanceled, Kind(res.Err))
	})

	s.Run("warns about declared total", func() {
		job := classicJob("advisory")
		job.Total = 10
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

		res := s.service.Reconstruct(context.Background(), job)
		s.Require().NoError(res.Err)
		s.NotEmpty(s.logs.FilterMessage("declared share count differs from shares present").All())
	})
}

func (s *ServiceSuite) TestBasisCache() {
	s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	first := s.service.Reconstruct(context.Background(), classicJob("a"))
	// same x-coordinates, different polynomial: 3 + 2x + 2x^2
	other := &share.Job{
		ID:        "b",
		Threshold: 3,
		Total:     3,
		Shares: []share.RawShare{
			{X: 1, Base: 10, Digits: "7"},
			{X: 2, Base: 16, Digits: "f"},
			{X: 3, Base: 10, Digits: "27"},
		},
	}
	second := s.service.Reconstruct(context.Background(), other)

	s.Require().NoError(first.Err)
	s.Require().NoError(second.Err)
	s.Equal("3", second.Secret.String())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BasisLookups.WithLabelValues("miss")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BasisLookups.WithLabelValues("hit")))
}

func (s *ServiceSuite) TestVerifyExtras() {
	svc, err := New(WithVerifyExtras(true), WithMetrics(s.metrics))
	s.Require().NoError(err)

	res := svc.Reconstruct(context.Background(), classicJob("consistent"))
	s.Require().NoError(res.Err)

	tampered := classicJob("tampered")
	tampered.Shares[3].Digits = "212"
	res = svc.Reconstruct(context.Background(), tampered)
	s.Equal(KindInconsistentShare, Kind(res.Err))

	// without verification the spare share is ignored
	res = s.serviceWithoutStore().Reconstruct(context.Background(), tampered)
	s.Require().NoError(res.Err)
	s.Equal("3", res.Secret.String())
}

func (s *ServiceSuite) serviceWithoutStore() *Service {
	svc, err := New()
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) TestRunAllIsolatesFailures() {
	s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	short := classicJob("short")
	short.Threshold = 5
	jobs := []*share.Job{classicJob("one"), short, classicJob("three")}

	results := s.service.RunAll(context.Background(), jobs, 2)
	s.Require().Len(results, 3)
	s.Equal("one", results[0].JobID)
	s.True(results[0].OK())
	s.Equal(KindInsufficient, Kind(results[1].Err))
	s.Equal("three", results[2].JobID)
	s.Equal("3", results[2].Secret.String())
}

func (s *ServiceSuite) TestRunFiles() {
	s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil).Times(5)

	dir := filepath.Join("..", "..", "testdata")
	paths := []string{
		filepath.Join(dir, "testcase1.json"),
		filepath.Join(dir, "testcase2.json"),
		filepath.Join(dir, "testcase3.yaml"),
		filepath.Join(dir, "broken.json"),
		filepath.Join(dir, "missing.json"),
	}

	results := s.service.RunFiles(context.Background(), paths, 0)
	s.Require().Len(results, 5)
	s.Equal("3", results[0].Secret.String())
	s.Equal("271644355478965", results[1].Secret.String())
	s.Equal("3", results[2].Secret.String())
	s.Equal(KindNonInteger, Kind(results[3].Err))
	s.Equal(KindIO, Kind(results[4].Err))
	s.Equal(paths[4], results[4].JobID)
}

func (s *ServiceSuite) TestFingerprint() {
	a := classicJob("a")
	b := classicJob("b")
	b.Shares[0].Digits = " 4 "
	s.Equal(Fingerprint(a), Fingerprint(b))

	b.Shares[2].Digits = "13"
	s.NotEqual(Fingerprint(a), Fingerprint(b))

	upper := &share.Job{Threshold: 1, Shares: []share.RawShare{{X: 1, Base: 16, Digits: "FF"}}}
	lower := &share.Job{Threshold: 1, Shares: []share.RawShare{{X: 1, Base: 16, Digits: "ff"}}}
	s.Equal(Fingerprint(upper), Fingerprint(lower))

	upper.Shares[0].Base, lower.Shares[0].Base = 62, 62
	s.NotEqual(Fingerprint(upper), Fingerprint(lower))
}

func (s *ServiceSuite) TestWithRealStore() {
	st, err := store.OpenInMemory()
	s.Require().NoError(err)
	defer st.Close()

	svc, err := New(WithStore(st), WithRunID("run-real"))
	s.Require().NoError(err)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return now }

	res := svc.Reconstruct(context.Background(), classicJob("ledger"))
	s.Require().NoError(res.Err)

	rec, err := st.Get(context.Background(), "ledger")
	s.Require().NoError(err)
	s.Equal("3", rec.Secret)
	s.Equal("run-real", rec.RunID)
	s.Equal(now, rec.CreatedAt)
	s.Equal(Fingerprint(classicJob("ledger")), rec.Fingerprint)
}
