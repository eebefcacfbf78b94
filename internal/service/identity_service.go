package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"
	"literacy_backend/internal/util"
	"literacy_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// StudentRef is the outcome of resolving a student reference. When Found is
// false, ID may still hold a syntactically valid ObjectId and Raw keeps the
// original input; lookups made with an unresolved ref simply match nothing.
type StudentRef struct {
	ID       primitive.ObjectID `json:"id"`
	NumberID string             `json:"numberId,omitempty"`
	Found    bool               `json:"found"`
	Raw      string             `json:"raw"`
}

// Keys lists every stored representation of the student, falling back to the
// raw input for legacy documents that never had a user behind them.
func (r StudentRef) Keys() repository.StudentKeys {
	keys := repository.StudentKeys{ObjectID: r.ID, IDNumber: r.NumberID}
	if keys.IDNumber == "" && keys.ObjectID.IsZero() {
		keys.IDNumber = r.Raw
	}
	return keys
}

// IdentityCache remembers idNumber → ObjectId across requests.
type IdentityCache interface {
	Get(ctx context.Context, idNumber string) (primitive.ObjectID, bool)
	Set(ctx context.Context, idNumber string, id primitive.ObjectID)
}

type NoopIdentityCache struct{}

func (NoopIdentityCache) Get(context.Context, string) (primitive.ObjectID, bool) {
	return primitive.NilObjectID, false
}

func (NoopIdentityCache) Set(context.Context, string, primitive.ObjectID) {}

type RedisIdentityCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisIdentityCache(client *redis.Client, ttl time.Duration) *RedisIdentityCache {
	return &RedisIdentityCache{Client: client, TTL: ttl}
}

func (c *RedisIdentityCache) key(idNumber string) string {
	return "identity:idNumber:" + idNumber
}

func (c *RedisIdentityCache) Get(ctx context.Context, idNumber string) (primitive.ObjectID, bool) {
	val, err := c.Client.Get(ctx, c.key(idNumber)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("identity cache read failed", zap.Error(err))
		}
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(val)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func (c *RedisIdentityCache) Set(ctx context.Context, idNumber string, id primitive.ObjectID) {
	if err := c.Client.Set(ctx, c.key(idNumber), id.Hex(), c.TTL).Err(); err != nil {
		logger.Log.Warn("identity cache write failed", zap.Error(err))
	}
}

type resolutionMemoKey struct{}

type resolutionMemo struct {
	mu   sync.Mutex
	refs map[string]StudentRef
}

// WithResolutionMemo scopes a memo to ctx so repeated resolutions of the same
// reference during one request hit the database once.
func WithResolutionMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, resolutionMemoKey{}, &resolutionMemo{refs: map[string]StudentRef{}})
}

func memoFrom(ctx context.Context) *resolutionMemo {
	m, _ := ctx.Value(resolutionMemoKey{}).(*resolutionMemo)
	return m
}

type IdentityService struct {
	Users UserStore
	Cache IdentityCache
}

func NewIdentityService(users UserStore, cache IdentityCache) *IdentityService {
	if cache == nil {
		cache = NoopIdentityCache{}
	}
	return &IdentityService{Users: users, Cache: cache}
}

// ResolveStudentReference turns an ObjectId hex or an idNumber into a StudentRef.
// Only infrastructure failures are returned as errors.
func (s *IdentityService) ResolveStudentReference(ctx context.Context, candidate string) (StudentRef, error) {
	candidate = strings.TrimSpace(candidate)
	memo := memoFrom(ctx)
	if memo != nil {
		memo.mu.Lock()
		ref, ok := memo.refs[candidate]
		memo.mu.Unlock()
		if ok {
			return ref, nil
		}
	}

	ref, err := s.resolve(ctx, candidate)
	if err != nil {
		return StudentRef{}, err
	}

	if memo != nil {
		memo.mu.Lock()
		memo.refs[candidate] = ref
		memo.mu.Unlock()
	}
	return ref, nil
}

func (s *IdentityService) resolve(ctx context.Context, candidate string) (StudentRef, error) {
	ref := StudentRef{Raw: candidate}
	if candidate == "" {
		return ref, nil
	}

	if id, err := primitive.ObjectIDFromHex(candidate); err == nil {
		ref.ID = id
		u, err := s.Users.FindByID(ctx, id)
		switch {
		case err == nil:
			ref.NumberID = u.IDNumber
			ref.Found = true
			return ref, nil
		case !errors.Is(err, repository.ErrNotFound):
			return StudentRef{}, err
		}
		// a 24-digit idNumber is also valid hex; fall through to the idNumber lookup
	}

	if id, ok := s.Cache.Get(ctx, candidate); ok {
		return StudentRef{ID: id, NumberID: candidate, Found: true, Raw: candidate}, nil
	}

	u, err := s.Users.FindByIDNumber(ctx, candidate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ref, nil
		}
		return StudentRef{}, err
	}
	s.Cache.Set(ctx, candidate, u.ID)
	return StudentRef{ID: u.ID, NumberID: u.IDNumber, Found: true, Raw: candidate}, nil
}

// RequireStudent resolves the reference and fails with ErrStudentNotFound when
// no user stands behind it.
func (s *IdentityService) RequireStudent(ctx context.Context, candidate string) (StudentRef, error) {
	ref, err := s.ResolveStudentReference(ctx, candidate)
	if err != nil {
		return StudentRef{}, err
	}
	if !ref.Found {
		return StudentRef{}, util.ErrStudentNotFound
	}
	return ref, nil
}

type FindOrCreateStudentRequest struct {
	IDNumber     string `json:"idNumber"`
	FirstName    string `json:"firstName" binding:"required"`
	MiddleName   string `json:"middleName"`
	LastName     string `json:"lastName" binding:"required"`
	ReadingLevel string `json:"readingLevel"`
	GradeLevel   string `json:"gradeLevel"`
	Section      string `json:"section"`
}

// FindOrCreateStudent matches an existing student by idNumber, then by name,
// and creates one when neither matches. The bool reports whether it created.
func (s *IdentityService) FindOrCreateStudent(ctx context.Context, req FindOrCreateStudentRequest) (*model.User, bool, error) {
	if err := validateStruct(req); err != nil {
		return nil, false, err
	}

	if req.IDNumber != "" {
		u, err := s.Users.FindByIDNumber(ctx, req.IDNumber)
		if err == nil {
			return u, false, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, false, err
		}
	}

	u, err := s.Users.FindByName(ctx, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName))
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	u = &model.User{
		IDNumber:   req.IDNumber,
		FirstName:  strings.TrimSpace(req.FirstName),
		MiddleName: strings.TrimSpace(req.MiddleName),
		LastName:   strings.TrimSpace(req.LastName),
		Role:       model.Student,
		GradeLevel: req.GradeLevel,
		Section:    req.Section,
	}
	if req.ReadingLevel != "" {
		level, err := model.NormalizeReadingLevel(req.ReadingLevel)
		if err != nil {
			return nil, false, util.Validationf("invalid readingLevel %q", req.ReadingLevel)
		}
		u.ReadingLevel = level
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	logger.Log.Info("student created", zap.String("id", u.ID.Hex()), zap.String("idNumber", u.IDNumber))
	return u, true, nil
}
