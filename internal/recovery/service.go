// Package recovery runs reconstruction jobs: it decodes shares, interpolates
// the secret, and records the outcome.
package recovery

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"shamir/internal/lagrange"
	"shamir/internal/platform/metrics"
	"shamir/internal/share"
	"shamir/internal/store"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

// Store persists job outcomes.
type Store interface {
	Put(ctx context.Context, rec store.Record) error
}

// Result is the outcome of one job. Secret is nil whenever Err is set.
type Result struct {
	JobID       string
	Secret      *big.Int
	Err         error
	Fingerprint string
	Duration    time.Duration
}

// OK reports whether the job produced a secret.
func (r Result) OK() bool {
	return r.Err == nil
}

// Service reconstructs secrets for jobs. It is safe for concurrent use.
type Service struct {
	logger    *zap.Logger
	metrics   *metrics.Metrics
	store     Store
	cache     *lru.Cache[string, *lagrange.Basis]
	cacheSize int
	verify    bool
	runID     string
	now       func() time.Time
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithStore(st Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithBasisCacheSize sets how many Lagrange bases are kept for reuse across
// jobs sharing the same x-coordinates.
func WithBasisCacheSize(n int) Option {
	return func(s *Service) {
		s.cacheSize = n
	}
}

// WithVerifyExtras makes a job fail when any share beyond the threshold is
// off the reconstructed polynomial.
func WithVerifyExtras(verify bool) Option {
	return func(s *Service) {
		s.verify = verify
	}
}

// WithRunID tags log lines and ledger records. A random id is used otherwise.
func WithRunID(id string) Option {
	return func(s *Service) {
		s.runID = id
	}
}

func New(opts ...Option) (*Service, error) {
	svc := &Service{
		logger:    zap.NewNop(),
		cacheSize: 128,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if svc.cacheSize < 1 {
		return nil, fmt.Errorf("basis cache size must be positive, got %d", svc.cacheSize)
	}
	cache, err := lru.New[string, *lagrange.Basis](svc.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create basis cache: %w", err)
	}
	svc.cache = cache
	if svc.runID == "" {
		svc.runID = uuid.NewString()
	}
	svc.logger = svc.logger.With(zap.String("run_id", svc.runID))
	return svc, nil
}

// RunID returns the id attached to this service's logs and records.
func (s *Service) RunID() string {
	return s.runID
}

// Reconstruct decodes the job's shares and returns the secret or the reason
// it could not be recovered.
func (s *Service) Reconstruct(ctx context.Context, job *share.Job) Result {
	start := s.now()
	res := Result{JobID: job.ID, Fingerprint: Fingerprint(job)}
	res.Secret, res.Err = s.reconstruct(ctx, job)
	if res.Err != nil {
		res.Secret = nil
	}
	res.Duration = s.now().Sub(start)
	s.finish(ctx, job, res)
	return res
}

func (s *Service) reconstruct(ctx context.Context, job *share.Job) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if job.TotalMismatch() {
		s.logger.Warn("declared share count differs from shares present",
			zap.String("job_id", job.ID),
			zap.Int("declared", job.Total),
			zap.Int("present", len(job.Shares)))
	}

	points, err := job.Points()
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AddSharesDecoded(len(points))
	}

	selected, err := lagrange.Select(points, job.Threshold)
	if err != nil {
		return nil, err
	}
	xs, ys := lagrange.Split(selected)
	basis, err := s.basis(xs)
	if err != nil {
		return nil, err
	}
	secret, err := basis.Combine(ys)
	if err != nil {
		return nil, err
	}

	if s.verify {
		bad, err := lagrange.Verify(points, job.Threshold)
		if err != nil {
			for _, p := range bad {
				s.logger.Warn("share off polynomial", zap.String("job_id", job.ID), zap.Stringer("x", p.X))
			}
			return nil, err
		}
	}
	return secret, nil
}

// basis returns the cached basis for xs, computing it on a miss.
func (s *Service) basis(xs []*big.Int) (*lagrange.Basis, error) {
	key := basisKey(xs)
	if b, ok := s.cache.Get(key); ok {
		s.observeLookup(true)
		return b, nil
	}
	s.observeLookup(false)

	b, err := lagrange.NewBasis(xs)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, b)
	return b, nil
}

func (s *Service) observeLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveBasisLookup(hit)
	}
}

func (s *Service) finish(ctx context.Context, job *share.Job, res Result) {
	kind := Kind(res.Err)
	if s.metrics != nil {
		s.metrics.ObserveJob(kind, res.Duration)
	}

	fields := []zap.Field{
		zap.String("job_id", job.ID),
		zap.Int("threshold", job.Threshold),
		zap.Int("shares", len(job.Shares)),
		zap.Duration("duration", res.Duration),
	}
	if res.Err != nil {
		s.logger.Error("reconstruction failed", append(fields, zap.String("kind", kind), zap.Error(res.Err))...)
	} else {
		s.logger.Debug("secret reconstructed", fields...)
	}

	if s.store == nil {
		return
	}
	rec := store.Record{
		JobID:       job.ID,
		Fingerprint: res.Fingerprint,
		RunID:       s.runID,
		Threshold:   job.Threshold,
		Total:       job.Total,
		CreatedAt:   s.now().UTC(),
	}
	if res.Err != nil {
		rec.ErrorKind = kind
		rec.Error = res.Err.Error()
	} else {
		rec.Secret = res.Secret.String()
	}
	if err := s.store.Put(ctx, rec); err != nil {
		s.logger.Warn("failed to record outcome", zap.String("job_id", job.ID), zap.Error(err))
	}
}

// RunAll reconstructs every job with at most workers running at once. One
// job's failure does not affect the others. Results are in input order.
func (s *Service) RunAll(ctx context.Context, jobs []*share.Job, workers int) []Result {
	return s.run(ctx, len(jobs), workers, func(ctx context.Context, i int) Result {
		return s.Reconstruct(ctx, jobs[i])
	})
}

// RunFiles loads and reconstructs each file as its own job. A file that
// cannot be loaded yields a failed result for that path only.
func (s *Service) RunFiles(ctx context.Context, paths []string, workers int) []Result {
	return s.run(ctx, len(paths), workers, func(ctx context.Context, i int) Result {
		job, err := share.LoadFile(paths[i])
		if err != nil {
			res := Result{JobID: paths[i], Err: err}
			s.finish(ctx, &share.Job{ID: paths[i]}, res)
			return res
		}
		return s.Reconstruct(ctx, job)
	})
}

func (s *Service) run(ctx context.Context, n, workers int, fn func(context.Context, int) Result) []Result {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, n)
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			results[i] = fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Fingerprint is a BLAKE2b-256 digest of the job's threshold and shares. Two
// documents with the same content have the same fingerprint.
func Fingerprint(job *share.Job) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(job.Threshold))
	for _, sh := range job.Shares {
		digits := strings.TrimSpace(sh.Digits)
		if sh.Base <= 36 {
			digits = strings.ToLower(digits)
		}
		fmt.Fprintf(&b, "|%d:%d:%s", sh.X, sh.Base, digits)
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func basisKey(xs []*big.Int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return strings.Join(parts, ",")
}
