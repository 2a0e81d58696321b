package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/studyroom/internal/server/metrics"
	"github.com/iudanet/studyroom/pkg/api"
)

// Limit задает количество запросов на окно времени.
// Rate <= 0 отключает ограничение.
type Limit struct {
	Rate   int
	Window time.Duration
}

// RateLimiter ограничивает частоту запросов по ключу (IP клиента)
// методом фиксированного окна с пополнением токенов.
type RateLimiter struct {
	now     func() time.Time
	buckets map[string]*bucket
	stopC   chan struct{}
	limit   Limit
	mu      sync.Mutex
	stop    sync.Once
}

type bucket struct {
	lastRefill time.Time
	tokens     int
}

// NewRateLimiter создает limiter и запускает фоновую очистку неактивных ключей.
// Остановить очистку: Stop.
func NewRateLimiter(limit Limit) *RateLimiter {
	rl := &RateLimiter{
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stopC:   make(chan struct{}),
		limit:   limit,
	}
	if limit.Rate > 0 && limit.Window > 0 {
		go rl.cleanup()
	}
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.limit.Window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evict()
		case <-rl.stopC:
			return
		}
	}
}

// evict удаляет buckets, не пополнявшиеся дольше двух окон
func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastRefill) > rl.limit.Window*2 {
			delete(rl.buckets, key)
		}
	}
}

// Stop останавливает фоновую очистку. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stop.Do(func() { close(rl.stopC) })
}

// Allow расходует токен для key. Если токенов нет, возвращает false
// и время до следующего пополнения.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	if rl.limit.Rate <= 0 || rl.limit.Window <= 0 {
		return true, 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.lastRefill) >= rl.limit.Window {
		b = &bucket{tokens: rl.limit.Rate, lastRefill: now}
		rl.buckets[key] = b
	}

	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}
	return false, rl.limit.Window - now.Sub(b.lastRefill)
}

// PathRateLimiter выбирает limiter по пути запроса.
// Пути без собственного лимита используют общий.
type PathRateLimiter struct {
	logger   *slog.Logger
	fallback *RateLimiter
	byPath   map[string]*RateLimiter
}

// NewPathRateLimiter создает limiter с отдельными лимитами для путей из perPath.
func NewPathRateLimiter(logger *slog.Logger, fallback Limit, perPath map[string]Limit) *PathRateLimiter {
	p := &PathRateLimiter{
		logger:   logger,
		fallback: NewRateLimiter(fallback),
		byPath:   make(map[string]*RateLimiter, len(perPath)),
	}
	for path, limit := range perPath {
		p.byPath[path] = NewRateLimiter(limit)
	}
	return p
}

// Stop останавливает очистку во всех limiters
func (p *PathRateLimiter) Stop() {
	p.fallback.Stop()
	for _, rl := range p.byPath {
		rl.Stop()
	}
}

// Middleware отвечает 429 с заголовком Retry-After при превышении лимита.
func (p *PathRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter, ok := p.byPath[r.URL.Path]
		if !ok {
			limiter = p.fallback
		}

		key := getClientIP(r)
		allowed, retryAfter := limiter.Allow(key)
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		metrics.RateLimitHits.WithLabelValues(r.URL.Path).Inc()
		p.logger.Warn("Rate limit exceeded",
			"ip", key,
			"method", r.Method,
			"path", r.URL.Path,
		)

		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			Message: "Too many requests, please try again later",
		})
	})
}

// getClientIP извлекает IP адрес клиента из запроса.
// Учитывает X-Forwarded-For и X-Real-IP от прокси.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Первый адрес в списке принадлежит клиенту
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
