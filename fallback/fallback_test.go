package fallback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/studyloop/aegis/breaker"
	"github.com/studyloop/aegis/cache"
	"github.com/studyloop/aegis/profile"
	"github.com/studyloop/aegis/store"
	"github.com/studyloop/aegis/xerrors"
)

// ========================================
// 测试替身 (Test Doubles)
// ========================================

var errConnRefused = xerrors.New("dial tcp: connection refused")

// fakeStore 可注入故障的主存储替身
type fakeStore struct {
	mu         sync.Mutex
	recs       map[string]*profile.LearnerProfile
	failing    bool
	fetchCalls int
	saveCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: make(map[string]*profile.LearnerProfile)}
}

func (f *fakeStore) key(tenantID, subject string) string {
	return tenantID + "/" + subject
}

func (f *fakeStore) setFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *fakeStore) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

func (f *fakeStore) Fetch(ctx context.Context, tenantID, subject string) (*profile.LearnerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++

	if f.failing {
		return nil, errConnRefused
	}
	rec, ok := f.recs[f.key(tenantID, subject)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.Clone(), nil
}

func (f *fakeStore) Save(ctx context.Context, rec *profile.LearnerProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++

	if f.failing {
		return errConnRefused
	}
	f.recs[f.key(rec.TenantID, rec.Subject)] = rec.Clone()
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errConnRefused
	}
	return nil
}

// hangingStore 挂死的主存储替身：阻塞到 ctx 截止后返回 ctx 错误
type hangingStore struct{}

func (hangingStore) Fetch(ctx context.Context, tenantID, subject string) (*profile.LearnerProfile, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (hangingStore) Save(ctx context.Context, rec *profile.LearnerProfile) error {
	<-ctx.Done()
	return ctx.Err()
}

func (hangingStore) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// failingCache 全操作失败的缓存替身
type failingCache struct{}

func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errConnRefused
}
func (failingCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errConnRefused
}
func (failingCache) Delete(ctx context.Context, key string) error { return errConnRefused }
func (failingCache) Has(ctx context.Context, key string) (bool, error) {
	return false, errConnRefused
}
func (failingCache) Close() error { return nil }

// ========================================
// 测试辅助 (Test Helpers)
// ========================================

// testEnv 一套协调器测试环境
type testEnv struct {
	coord   Coordinator
	primary *fakeStore
	cache   cache.Cache
	clock   *time.Time
}

// newTestEnv 创建协调器 + 故障可注入主存储 + 内存缓存 + 可控时钟（测试辅助）
func newTestEnv(t *testing.T, brkCfg *breaker.Config) *testEnv {
	t.Helper()
	return newTestEnvWithTTL(t, time.Hour, brkCfg)
}

// newTestEnvWithTTL 同 newTestEnv，但缓存 TTL 可定制（测试辅助）
func newTestEnvWithTTL(t *testing.T, ttl time.Duration, brkCfg *breaker.Config) *testEnv {
	t.Helper()

	primary := newFakeStore()

	memCache, err := cache.New(&cache.Config{Driver: cache.DriverMemory})
	if err != nil {
		t.Fatalf("cache.New 返回错误: %v", err)
	}
	t.Cleanup(func() { memCache.Close() })

	if brkCfg == nil {
		brkCfg = breaker.DefaultConfig()
	}

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := &now
	brk, err := breaker.New(brkCfg, breaker.WithClock(func() time.Time { return *clock }))
	if err != nil {
		t.Fatalf("breaker.New 返回错误: %v", err)
	}

	coord, err := New(primary, memCache, &Config{
		CacheTTL:       ttl,
		PrimaryTimeout: 100 * time.Millisecond,
	}, WithBreaker(brk))
	if err != nil {
		t.Fatalf("New 返回错误: %v", err)
	}

	return &testEnv{coord: coord, primary: primary, cache: memCache, clock: clock}
}

// waitRefresh 等待在途的异步缓存刷新完成（测试辅助）
func (e *testEnv) waitRefresh() {
	e.coord.(*coordinator).refreshWG.Wait()
}

func testProfile(subject string) *profile.LearnerProfile {
	return &profile.LearnerProfile{
		TenantID: "canvas-district-7",
		Subject:  subject,
		Attributes: map[string]any{
			"grade_level": "8",
			"locale":      "en-US",
		},
	}
}

// ========================================
// 构造与校验 (Construction & Validation)
// ========================================

// TestNewInvalid 测试非法构造参数
func TestNewInvalid(t *testing.T) {
	primary := newFakeStore()
	memCache, _ := cache.New(&cache.Config{Driver: cache.DriverMemory})
	defer memCache.Close()

	if _, err := New(nil, memCache, DefaultConfig()); !xerrors.Is(err, ErrPrimaryNil) {
		t.Errorf("nil 主存储应返回 ErrPrimaryNil，实际: %v", err)
	}
	if _, err := New(primary, nil, DefaultConfig()); !xerrors.Is(err, ErrCacheNil) {
		t.Errorf("nil 缓存应返回 ErrCacheNil，实际: %v", err)
	}
	if _, err := New(primary, memCache, nil); !xerrors.Is(err, ErrConfigNil) {
		t.Errorf("nil 配置应返回 ErrConfigNil，实际: %v", err)
	}
	if _, err := New(primary, memCache, &Config{Serializer: "xml"}); err == nil {
		t.Error("未知序列化器应返回错误")
	}
}

// TestGetProfileValidation 测试读操作的参数校验
func TestGetProfileValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	if _, err := env.coord.GetProfile(ctx, "", "s"); !xerrors.Is(err, profile.ErrTenantEmpty) {
		t.Errorf("空租户应返回 ErrTenantEmpty，实际: %v", err)
	}
	if _, err := env.coord.GetProfile(ctx, "t", ""); !xerrors.Is(err, profile.ErrSubjectEmpty) {
		t.Errorf("空 subject 应返回 ErrSubjectEmpty，实际: %v", err)
	}
	if err := env.coord.SaveProfile(ctx, nil); !xerrors.Is(err, profile.ErrProfileNil) {
		t.Errorf("nil 记录应返回 ErrProfileNil，实际: %v", err)
	}
}

// ========================================
// 读路径 (Read Path)
// ========================================

// TestGetProfileFromPrimary 测试主存储正常时的读取与缓存刷新
func TestGetProfileFromPrimary(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	rec := testProfile("lti-user-42")
	if err := env.coord.SaveProfile(ctx, rec); err != nil {
		t.Fatalf("SaveProfile 返回错误: %v", err)
	}

	got, err := env.coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil {
		t.Fatalf("GetProfile 返回错误: %v", err)
	}
	if got == nil || got.Attributes["grade_level"] != "8" {
		t.Fatalf("GetProfile = %+v，期望 grade_level=8", got)
	}

	// 读成功后缓存应被异步刷新
	env.waitRefresh()
	ok, err := env.cache.Has(ctx, "fallback:learner-profile:canvas-district-7:lti-user-42")
	if err != nil || !ok {
		t.Errorf("读取后缓存键应存在，Has = (%v, %v)", ok, err)
	}

	snap := env.coord.Metrics()
	if snap.PrimaryFailures != 0 || snap.FallbackActivations != 0 {
		t.Errorf("正常读取不应产生失败/降级计数: %+v", snap)
	}
}

// TestGetProfileNotFound 测试两边都没有数据时返回 nil
func TestGetProfileNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	got, err := env.coord.GetProfile(context.Background(), "tenant-1", "absent")
	if err != nil {
		t.Fatalf("GetProfile 返回错误: %v", err)
	}
	if got != nil {
		t.Errorf("不存在的记录应返回 nil，实际: %+v", got)
	}
}

// TestNotFoundIsNotFailure 测试"记录不存在"不推动熔断器
func TestNotFoundIsNotFailure(t *testing.T) {
	env := newTestEnv(t, &breaker.Config{FailureThreshold: 2})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := env.coord.GetProfile(ctx, "tenant-1", "absent"); err != nil {
			t.Fatalf("GetProfile 返回错误: %v", err)
		}
	}

	snap := env.coord.Metrics()
	if snap.PrimaryFailures != 0 {
		t.Errorf("PrimaryFailures = %d，期望 0", snap.PrimaryFailures)
	}
	if snap.CircuitState != breaker.StateClosed {
		t.Errorf("CircuitState = %v，期望 closed", snap.CircuitState)
	}
	if !snap.LastFailure.IsZero() {
		t.Errorf("LastFailure 应为零值，实际: %v", snap.LastFailure)
	}
}

// TestReadFallbackIdempotence 测试主存储持续失败时降级读的幂等性
func TestReadFallbackIdempotence(t *testing.T) {
	env := newTestEnv(t, &breaker.Config{FailureThreshold: 100})
	ctx := context.Background()

	rec := testProfile("lti-user-42")
	if err := env.coord.SaveProfile(ctx, rec); err != nil {
		t.Fatalf("SaveProfile 返回错误: %v", err)
	}

	env.primary.setFailing(true)

	first, err := env.coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil || first == nil {
		t.Fatalf("第一次降级读 = (%+v, %v)，期望命中缓存", first, err)
	}
	second, err := env.coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil || second == nil {
		t.Fatalf("第二次降级读 = (%+v, %v)，期望命中缓存", second, err)
	}

	if first.Attributes["grade_level"] != second.Attributes["grade_level"] ||
		first.Subject != second.Subject {
		t.Errorf("两次降级读结果不一致: %+v vs %+v", first, second)
	}

	snap := env.coord.Metrics()
	if snap.PrimaryFailures != 2 {
		t.Errorf("PrimaryFailures = %d，期望 2", snap.PrimaryFailures)
	}
	if snap.FallbackActivations != 2 {
		t.Errorf("FallbackActivations = %d，期望 2", snap.FallbackActivations)
	}
	if snap.CacheHits != 2 {
		t.Errorf("CacheHits = %d，期望 2", snap.CacheHits)
	}
}

// TestGetProfileBothPathsEmpty 测试主存储失败且缓存为空时返回 nil
func TestGetProfileBothPathsEmpty(t *testing.T) {
	env := newTestEnv(t, &breaker.Config{FailureThreshold: 100})
	env.primary.setFailing(true)

	got, err := env.coord.GetProfile(context.Background(), "tenant-1", "user-1")
	if err != nil {
		t.Fatalf("存储故障不应通过 error 暴露: %v", err)
	}
	if got != nil {
		t.Errorf("两边皆空应返回 nil，实际: %+v", got)
	}

	snap := env.coord.Metrics()
	if snap.CacheMisses != 1 {
		t.Errorf("CacheMisses = %d，期望 1", snap.CacheMisses)
	}
}

// ========================================
// 写路径 (Write Path)
// ========================================

// TestWriteDurabilityUnderOutage 测试主存储故障期间写入不丢失
func TestWriteDurabilityUnderOutage(t *testing.T) {
	env := newTestEnv(t, &breaker.Config{FailureThreshold: 1, ResetTimeout: time.Hour})
	ctx := context.Background()

	env.primary.setFailing(true)

	// 主存储失败但缓存副本存在，写入仍然成功
	rec := testProfile("lti-user-42")
	if err := env.coord.SaveProfile(ctx, rec); err != nil {
		t.Fatalf("主存储故障下 SaveProfile 不应报错: %v", err)
	}

	snap := env.coord.Metrics()
	if snap.CircuitState != breaker.StateOpen {
		t.Fatalf("CircuitState = %v，期望 open", snap.CircuitState)
	}

	// 熔断器打开时读取应从缓存返回原记录
	got, err := env.coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil {
		t.Fatalf("GetProfile 返回错误: %v", err)
	}
	if got == nil {
		t.Fatal("缓存副本应可读取")
	}
	if got.Subject != rec.Subject || got.Attributes["grade_level"] != "8" {
		t.Errorf("缓存副本 = %+v，期望与写入一致", got)
	}
}

// TestSaveSkipsPrimaryWhenOpen 测试熔断器打开时写入跳过主存储
func TestSaveSkipsPrimaryWhenOpen(t *testing.T) {
	env := newTestEnv(t, &breaker.Config{FailureThreshold: 1, ResetTimeout: time.Hour})
	ctx := context.Background()

	env.primary.setFailing(true)
	if err := env.coord.SaveProfile(ctx, testProfile("u1")); err != nil {
		t.Fatalf("SaveProfile 返回错误: %v", err)
	}
	saveCallsAfterTrip := env.primary.saveCalls

	// 熔断已打开，后续写入不应触达主存储
	if err := env.coord.SaveProfile(ctx, testProfile("u2")); err != nil {
		t.Fatalf("SaveProfile 返回错误: %v", err)
	}
	if env.primary.saveCalls != saveCallsAfterTrip {
		t.Errorf("熔断打开时主存储被调用了 %d 次", env.primary.saveCalls-saveCallsAfterTrip)
	}

	snap := env.coord.Metrics()
	if snap.FallbackActivations != 2 {
		t.Errorf("FallbackActivations = %d，期望 2", snap.FallbackActivations)
	}
}

// TestSaveWithFailingCache 测试缓存故障被吞掉
func TestSaveWithFailingCache(t *testing.T) {
	primary := newFakeStore()
	coord, err := New(primary, failingCache{}, DefaultConfig())
	if err != nil {
		t.Fatalf("New 返回错误: %v", err)
	}
	ctx := context.Background()

	rec := testProfile("lti-user-42")
	if err := coord.SaveProfile(ctx, rec); err != nil {
		t.Fatalf("缓存故障不应使写入失败: %v", err)
	}

	// 主存储仍然持有记录
	got, err := coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil || got == nil {
		t.Fatalf("GetProfile = (%+v, %v)，期望命中主存储", got, err)
	}
	coord.(*coordinator).refreshWG.Wait()

	// 主存储也失败时，缓存故障按未命中处理，返回 nil 而不是 error
	primary.setFailing(true)
	got, err = coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil {
		t.Fatalf("降级路径不应返回错误: %v", err)
	}
	if got != nil {
		t.Errorf("缓存故障应按未命中处理，实际: %+v", got)
	}
}

// ========================================
// 熔断场景 (Circuit Scenarios)
// ========================================

// TestOutageRecoveryScenario 测试完整的故障-熔断-恢复链路
//
// 阈值 5、冷却 60s：5 次失败读后熔断打开；打开期间读取由缓存
// 承接且不触达主存储；时钟前进 61s 且主存储恢复后，熔断器经
// half_open 回到 closed。
func TestOutageRecoveryScenario(t *testing.T) {
	env := newTestEnv(t, &breaker.Config{
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
		HalfOpenProbes:   1,
	})
	ctx := context.Background()

	rec := testProfile("lti-user-42")
	if err := env.coord.SaveProfile(ctx, rec); err != nil {
		t.Fatalf("SaveProfile 返回错误: %v", err)
	}

	// 5 次失败读触发熔断
	env.primary.setFailing(true)
	for i := 0; i < 5; i++ {
		if _, err := env.coord.GetProfile(ctx, rec.TenantID, rec.Subject); err != nil {
			t.Fatalf("第 %d 次降级读返回错误: %v", i+1, err)
		}
	}
	snap := env.coord.Metrics()
	if snap.CircuitState != breaker.StateOpen {
		t.Fatalf("5 次失败后 CircuitState = %v，期望 open", snap.CircuitState)
	}
	if snap.PrimaryFailures != 5 {
		t.Errorf("PrimaryFailures = %d，期望 5", snap.PrimaryFailures)
	}

	// 熔断期间：缓存承接，主存储零触达，降级计数 +1
	fetchesBefore := env.primary.fetchCount()
	fallbacksBefore := snap.FallbackActivations

	got, err := env.coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil || got == nil {
		t.Fatalf("熔断期间读取 = (%+v, %v)，期望命中缓存", got, err)
	}
	if env.primary.fetchCount() != fetchesBefore {
		t.Error("熔断期间主存储不应被调用")
	}
	if got := env.coord.Metrics().FallbackActivations; got != fallbacksBefore+1 {
		t.Errorf("FallbackActivations = %d，期望 %d", got, fallbacksBefore+1)
	}

	// 时钟前进 61s，主存储恢复
	*env.clock = env.clock.Add(61 * time.Second)
	env.primary.setFailing(false)

	got, err = env.coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil || got == nil {
		t.Fatalf("恢复后的探测读 = (%+v, %v)，期望命中主存储", got, err)
	}
	if state := env.coord.Metrics().CircuitState; state != breaker.StateClosed {
		t.Errorf("探测成功后 CircuitState = %v，期望 closed", state)
	}
	env.waitRefresh()
}

// TestHangingPrimaryTimesOut 测试挂死的主存储不会阻塞降级路径
//
// 主存储永不返回，只有有界超时能解救调用；超时按显式失败处理，
// 写入靠缓存副本成功，读取由缓存承接。
func TestHangingPrimaryTimesOut(t *testing.T) {
	memCache, err := cache.New(&cache.Config{Driver: cache.DriverMemory})
	if err != nil {
		t.Fatalf("cache.New 返回错误: %v", err)
	}
	defer memCache.Close()

	coord, err := New(hangingStore{}, memCache, &Config{
		PrimaryTimeout: 50 * time.Millisecond,
		Breaker:        &breaker.Config{FailureThreshold: 100},
	})
	if err != nil {
		t.Fatalf("New 返回错误: %v", err)
	}
	ctx := context.Background()

	rec := testProfile("lti-user-42")
	start := time.Now()
	if err := coord.SaveProfile(ctx, rec); err != nil {
		t.Fatalf("主存储挂死时 SaveProfile 不应报错: %v", err)
	}
	got, err := coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil {
		t.Fatalf("GetProfile 返回错误: %v", err)
	}
	elapsed := time.Since(start)

	if got == nil || got.Subject != rec.Subject {
		t.Fatalf("降级读 = %+v，期望命中缓存副本", got)
	}
	// 两次调用各等待一个 50ms 超时，远低于挂死阈值
	if elapsed > 2*time.Second {
		t.Errorf("调用耗时 %v，超时没有生效", elapsed)
	}

	snap := coord.Metrics()
	if snap.PrimaryFailures != 2 {
		t.Errorf("PrimaryFailures = %d，期望 2（超时计为失败）", snap.PrimaryFailures)
	}
	if snap.FallbackActivations != 2 {
		t.Errorf("FallbackActivations = %d，期望 2", snap.FallbackActivations)
	}
	if snap.CacheHits != 1 {
		t.Errorf("CacheHits = %d，期望 1", snap.CacheHits)
	}
}

// TestExpiredCacheEntryIsMiss 测试过期缓存条目等同于未命中
func TestExpiredCacheEntryIsMiss(t *testing.T) {
	env := newTestEnvWithTTL(t, 50*time.Millisecond, &breaker.Config{FailureThreshold: 100})
	ctx := context.Background()

	rec := testProfile("lti-user-42")
	if err := env.coord.SaveProfile(ctx, rec); err != nil {
		t.Fatalf("SaveProfile 返回错误: %v", err)
	}

	env.primary.setFailing(true)

	// TTL 内降级读命中
	got, err := env.coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil || got == nil {
		t.Fatalf("TTL 内降级读 = (%+v, %v)，期望命中缓存", got, err)
	}

	// TTL 过后同一条目按未命中处理
	time.Sleep(120 * time.Millisecond)
	got, err = env.coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil {
		t.Fatalf("GetProfile 返回错误: %v", err)
	}
	if got != nil {
		t.Errorf("过期条目应按未命中处理，实际: %+v", got)
	}

	snap := env.coord.Metrics()
	if snap.CacheMisses != 1 {
		t.Errorf("CacheMisses = %d，期望 1", snap.CacheMisses)
	}
	if snap.CacheHits != 1 {
		t.Errorf("CacheHits = %d，期望 1", snap.CacheHits)
	}
}

// TestResetCircuit 测试管理端重置
func TestResetCircuit(t *testing.T) {
	env := newTestEnv(t, &breaker.Config{FailureThreshold: 1, ResetTimeout: time.Hour})
	ctx := context.Background()

	env.primary.setFailing(true)
	if _, err := env.coord.GetProfile(ctx, "tenant-1", "user-1"); err != nil {
		t.Fatalf("GetProfile 返回错误: %v", err)
	}

	snap := env.coord.Metrics()
	if snap.CircuitState != breaker.StateOpen || snap.PrimaryFailures == 0 {
		t.Fatalf("前置状态异常: %+v", snap)
	}

	env.coord.ResetCircuit()

	snap = env.coord.Metrics()
	if snap.CircuitState != breaker.StateClosed {
		t.Errorf("ResetCircuit 后 CircuitState = %v，期望 closed", snap.CircuitState)
	}
	if snap.PrimaryFailures != 0 || snap.FallbackActivations != 0 ||
		snap.CacheHits != 0 || snap.CacheMisses != 0 {
		t.Errorf("ResetCircuit 后计数器应清零: %+v", snap)
	}
	if !snap.LastFailure.IsZero() {
		t.Errorf("ResetCircuit 后 LastFailure 应为零值: %v", snap.LastFailure)
	}

	// 重置后主存储恢复，正常路径立即可用
	env.primary.setFailing(false)
	if err := env.coord.SaveProfile(ctx, testProfile("user-1")); err != nil {
		t.Fatalf("SaveProfile 返回错误: %v", err)
	}
	if env.primary.saveCalls == 0 {
		t.Error("重置后写入应触达主存储")
	}
}

// TestConcurrentAccess 测试并发读写
func TestConcurrentAccess(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rec := testProfile("lti-user-42")
			for j := 0; j < 50; j++ {
				if err := env.coord.SaveProfile(ctx, rec); err != nil {
					t.Errorf("SaveProfile 返回错误: %v", err)
					return
				}
				if _, err := env.coord.GetProfile(ctx, rec.TenantID, rec.Subject); err != nil {
					t.Errorf("GetProfile 返回错误: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	env.waitRefresh()

	got, err := env.coord.GetProfile(ctx, "canvas-district-7", "lti-user-42")
	if err != nil || got == nil {
		t.Fatalf("并发后读取 = (%+v, %v)", got, err)
	}
}

// TestMsgpackSerializer 测试 msgpack 序列化的降级读
func TestMsgpackSerializer(t *testing.T) {
	primary := newFakeStore()
	memCache, err := cache.New(&cache.Config{Driver: cache.DriverMemory})
	if err != nil {
		t.Fatalf("cache.New 返回错误: %v", err)
	}
	defer memCache.Close()

	coord, err := New(primary, memCache, &Config{Serializer: "msgpack"})
	if err != nil {
		t.Fatalf("New 返回错误: %v", err)
	}
	ctx := context.Background()

	rec := testProfile("lti-user-42")
	if err := coord.SaveProfile(ctx, rec); err != nil {
		t.Fatalf("SaveProfile 返回错误: %v", err)
	}

	primary.setFailing(true)
	got, err := coord.GetProfile(ctx, rec.TenantID, rec.Subject)
	if err != nil || got == nil {
		t.Fatalf("msgpack 降级读 = (%+v, %v)，期望命中缓存", got, err)
	}
	if got.Subject != rec.Subject {
		t.Errorf("Subject = %v，期望 %v", got.Subject, rec.Subject)
	}
}
