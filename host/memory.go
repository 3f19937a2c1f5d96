package host

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/arloliu/pushsub/types"
	"github.com/arloliu/pushsub/vapid"
)

// DefaultEndpointBase is the push service URL prefix used for issued endpoints.
const DefaultEndpointBase = "https://push.invalid/wpush/v2/"

var (
	// ErrPermissionNotGranted is returned by Subscribe when consent was not granted.
	ErrPermissionNotGranted = errors.New("NotAllowedError: notification permission not granted")

	// ErrKeyMismatch is returned by Subscribe when a subscription with a different key exists.
	ErrKeyMismatch = errors.New("InvalidStateError: subscription exists with a different application server key")
)

// MemoryOption configures a Memory host.
type MemoryOption func(*Memory)

// WithPermission sets the initial notification permission (default: PermissionDefault).
func WithPermission(p types.Permission) MemoryOption {
	return func(m *Memory) { m.permission = p }
}

// WithPromptAnswer sets what the user answers when prompted (default: PermissionGranted).
func WithPromptAnswer(p types.Permission) MemoryOption {
	return func(m *Memory) { m.promptAnswer = p }
}

// WithoutPushSupport makes the host report no push capability.
func WithoutPushSupport() MemoryOption {
	return func(m *Memory) { m.pushSupported = false }
}

// WithoutWorkerRegistry removes the worker registry capability.
func WithoutWorkerRegistry() MemoryOption {
	return func(m *Memory) { m.hasRegistry = false }
}

// WithoutPermissionGate removes the permission gate capability.
func WithoutPermissionGate() MemoryOption {
	return func(m *Memory) { m.hasGate = false }
}

// WithScope sets the registration scope (default: "/").
func WithScope(scope string) MemoryOption {
	return func(m *Memory) { m.scope = scope }
}

// WithEndpointBase sets the prefix of issued subscription endpoints.
func WithEndpointBase(base string) MemoryOption {
	return func(m *Memory) { m.endpointBase = base }
}

// WithKeyValidation makes Subscribe reject application server keys that are not
// valid P-256 public keys, as real push services do.
func WithKeyValidation() MemoryOption {
	return func(m *Memory) { m.validateKeys = true }
}

// WithExistingSubscription starts the host with an active push subscription.
func WithExistingSubscription() MemoryOption {
	return func(m *Memory) { m.seedSubscription = true }
}

// Memory is an in-process host environment.
//
// All methods are safe for concurrent use.
type Memory struct {
	mu sync.Mutex

	pushSupported    bool
	hasRegistry      bool
	hasGate          bool
	validateKeys     bool
	seedSubscription bool
	scope            string
	endpointBase     string

	permission   types.Permission
	promptAnswer types.Permission

	readyErr       error
	promptErr      error
	getErr         error
	subscribeErr   error
	unsubscribeErr error

	readyHold  chan struct{}
	promptHold chan struct{}

	current *memorySubscription

	permissionRequests int
	subscribeCalls     int
	unsubscribeCalls   int
	lastOptions        types.SubscribeOptions
}

// Compile-time assertions.
var (
	_ types.Host           = (*Memory)(nil)
	_ types.WorkerRegistry = (*memoryRegistry)(nil)
	_ types.Registration   = (*memoryRegistration)(nil)
	_ types.PushManager    = (*memoryPushManager)(nil)
	_ types.Subscription   = (*memorySubscription)(nil)
	_ types.PermissionGate = (*memoryGate)(nil)
)

// NewMemory creates an in-memory host that supports push.
//
// Parameters:
//   - opts: Optional configuration
//
// Returns:
//   - *Memory: Host with permission "default" that grants consent when prompted
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		pushSupported: true,
		hasRegistry:   true,
		hasGate:       true,
		scope:         "/",
		endpointBase:  DefaultEndpointBase,
		permission:    types.PermissionDefault,
		promptAnswer:  types.PermissionGranted,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.seedSubscription {
		m.current = m.newSubscription("")
	}

	return m
}

// WorkerRegistry implements types.Host.
func (m *Memory) WorkerRegistry() types.WorkerRegistry {
	if !m.hasRegistry {
		return nil
	}

	return &memoryRegistry{m: m}
}

// PushSupported implements types.Host.
func (m *Memory) PushSupported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pushSupported
}

// SetPushSupported changes the reported push capability.
func (m *Memory) SetPushSupported(ok bool) {
	m.mu.Lock()
	m.pushSupported = ok
	m.mu.Unlock()
}

// PermissionGate implements types.Host.
func (m *Memory) PermissionGate() types.PermissionGate {
	if !m.hasGate {
		return nil
	}

	return &memoryGate{m: m}
}

// SetPermission changes the current permission, as if the user edited it in settings.
func (m *Memory) SetPermission(p types.Permission) {
	m.mu.Lock()
	m.permission = p
	m.mu.Unlock()
}

// SetPromptAnswer changes what the next prompt answers.
func (m *Memory) SetPromptAnswer(p types.Permission) {
	m.mu.Lock()
	m.promptAnswer = p
	m.mu.Unlock()
}

// FailReady makes WorkerRegistry.Ready return err (nil clears).
func (m *Memory) FailReady(err error) {
	m.mu.Lock()
	m.readyErr = err
	m.mu.Unlock()
}

// FailPermissionRequest makes RequestPermission return err (nil clears).
func (m *Memory) FailPermissionRequest(err error) {
	m.mu.Lock()
	m.promptErr = err
	m.mu.Unlock()
}

// FailGetSubscription makes PushManager.GetSubscription return err (nil clears).
func (m *Memory) FailGetSubscription(err error) {
	m.mu.Lock()
	m.getErr = err
	m.mu.Unlock()
}

// FailSubscribe makes PushManager.Subscribe return err (nil clears).
func (m *Memory) FailSubscribe(err error) {
	m.mu.Lock()
	m.subscribeErr = err
	m.mu.Unlock()
}

// FailUnsubscribe makes Subscription.Unsubscribe return err (nil clears).
func (m *Memory) FailUnsubscribe(err error) {
	m.mu.Lock()
	m.unsubscribeErr = err
	m.mu.Unlock()
}

// HoldReady makes WorkerRegistry.Ready block until the returned release
// function is called or the caller's context ends.
func (m *Memory) HoldReady() (release func()) {
	return m.hold(&m.readyHold)
}

// HoldPrompt makes RequestPermission block until the returned release
// function is called or the caller's context ends.
func (m *Memory) HoldPrompt() (release func()) {
	return m.hold(&m.promptHold)
}

func (m *Memory) hold(slot *chan struct{}) func() {
	ch := make(chan struct{})

	m.mu.Lock()
	*slot = ch
	m.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			m.mu.Lock()
			if *slot == ch {
				*slot = nil
			}
			m.mu.Unlock()
			close(ch)
		})
	}
}

// Permission returns the current permission.
func (m *Memory) Permission() types.Permission {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.permission
}

// HasSubscription reports whether a push subscription is active.
func (m *Memory) HasSubscription() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current != nil
}

// CurrentRecord returns the active subscription record, if any.
func (m *Memory) CurrentRecord() (types.SubscriptionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return types.SubscriptionRecord{}, false
	}

	return m.current.record, true
}

// PermissionRequests returns how many times the user was prompted.
func (m *Memory) PermissionRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.permissionRequests
}

// SubscribeCalls returns how many times PushManager.Subscribe was called.
func (m *Memory) SubscribeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.subscribeCalls
}

// UnsubscribeCalls returns how many times Subscription.Unsubscribe was called.
func (m *Memory) UnsubscribeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.unsubscribeCalls
}

// LastSubscribeOptions returns the options of the latest Subscribe call.
func (m *Memory) LastSubscribeOptions() types.SubscribeOptions {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastOptions
}

// newSubscription must be called with m.mu held or before m is shared.
func (m *Memory) newSubscription(key string) *memorySubscription {
	// Client keys come from a fresh P-256 pair; the private half stays with the "browser".
	kp, err := vapid.GenerateKeyPair()
	if err != nil {
		panic(fmt.Sprintf("host: generate client key: %v", err))
	}
	auth := uuid.New()

	return &memorySubscription{
		m:   m,
		key: key,
		record: types.SubscriptionRecord{
			Endpoint: m.endpointBase + uuid.NewString(),
			Keys: types.SubscriptionKeys{
				P256DH: kp.PublicKey,
				Auth:   base64.RawURLEncoding.EncodeToString(auth[:]),
			},
		},
	}
}

func waitHold(ctx context.Context, ch chan struct{}) error {
	if ch == nil {
		return nil
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type memoryRegistry struct {
	m *Memory
}

func (r *memoryRegistry) Ready(ctx context.Context) (types.Registration, error) {
	r.m.mu.Lock()
	hold := r.m.readyHold
	r.m.mu.Unlock()

	if err := waitHold(ctx, hold); err != nil {
		return nil, err
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.readyErr != nil {
		return nil, r.m.readyErr
	}

	return &memoryRegistration{m: r.m}, nil
}

type memoryRegistration struct {
	m *Memory
}

func (r *memoryRegistration) Scope() string {
	return r.m.scope
}

func (r *memoryRegistration) PushManager() types.PushManager {
	return &memoryPushManager{m: r.m}
}

type memoryPushManager struct {
	m *Memory
}

func (p *memoryPushManager) GetSubscription(ctx context.Context) (types.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.m.mu.Lock()
	defer p.m.mu.Unlock()

	if p.m.getErr != nil {
		return nil, p.m.getErr
	}
	if p.m.current == nil {
		return nil, nil //nolint:nilnil // no subscription is not an error
	}

	return p.m.current, nil
}

func (p *memoryPushManager) Subscribe(ctx context.Context, opts types.SubscribeOptions) (types.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.m.mu.Lock()
	defer p.m.mu.Unlock()

	p.m.subscribeCalls++
	p.m.lastOptions = opts

	if p.m.subscribeErr != nil {
		return nil, p.m.subscribeErr
	}
	if p.m.permission != types.PermissionGranted {
		return nil, ErrPermissionNotGranted
	}
	if p.m.validateKeys && opts.ApplicationServerKey != "" {
		if err := vapid.ValidatePublicKey(opts.ApplicationServerKey); err != nil {
			return nil, fmt.Errorf("InvalidAccessError: %w", err)
		}
	}

	if p.m.current != nil {
		if p.m.current.key != opts.ApplicationServerKey {
			return nil, ErrKeyMismatch
		}

		return p.m.current, nil
	}

	p.m.current = p.m.newSubscription(opts.ApplicationServerKey)

	return p.m.current, nil
}

type memorySubscription struct {
	m      *Memory
	key    string
	record types.SubscriptionRecord
}

func (s *memorySubscription) Record() types.SubscriptionRecord {
	return s.record
}

func (s *memorySubscription) Unsubscribe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	s.m.unsubscribeCalls++
	if s.m.unsubscribeErr != nil {
		return s.m.unsubscribeErr
	}
	if s.m.current == s {
		s.m.current = nil
	}

	return nil
}

type memoryGate struct {
	m *Memory
}

func (g *memoryGate) Permission() types.Permission {
	return g.m.Permission()
}

func (g *memoryGate) RequestPermission(ctx context.Context) (types.Permission, error) {
	g.m.mu.Lock()
	g.m.permissionRequests++
	hold := g.m.promptHold
	g.m.mu.Unlock()

	if err := waitHold(ctx, hold); err != nil {
		return types.PermissionDefault, err
	}

	g.m.mu.Lock()
	defer g.m.mu.Unlock()

	if g.m.promptErr != nil {
		return types.PermissionDefault, g.m.promptErr
	}

	// Only an undecided permission prompts the user.
	if g.m.permission == types.PermissionDefault {
		g.m.permission = g.m.promptAnswer
	}

	return g.m.permission, nil
}
