package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/logging"
	"github.com/google/uuid"
)

// DefaultContextWindow bounds how many records a Get returns.
const DefaultContextWindow = 5

// DefaultKeyPrefix namespaces conversation keys in the store.
const DefaultKeyPrefix = "std.history"

// Options configure a Manager.
type Options struct {
	// ContextWindow is the number of most recent records Get returns.
	ContextWindow int
	// KeyPrefix distinguishes history namespaces; the store key is
	// "<prefix>-<conversation id>".
	KeyPrefix string
	// Template rewrites user-role record content on write.
	Template *Template
	// Variables are the default template variable values.
	Variables map[string]string
	// BaseRecords are immutable persona records prepended on reads and
	// never persisted.
	BaseRecords []core.Record
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// WriteOptions override templating for a single write.
type WriteOptions struct {
	Template  *Template
	Variables map[string]string
}

// Manager owns conversation windowing, content templating and batch/sequence
// semantics over the record store.
type Manager struct {
	store core.RecordStore
	opts  Options

	keysMu sync.Mutex
	keys   map[string]*sync.Mutex
}

// NewManager constructs a Manager over the given store.
func NewManager(store core.RecordStore, optFns ...func(o *Options)) *Manager {
	opts := Options{
		ContextWindow: DefaultContextWindow,
		KeyPrefix:     DefaultKeyPrefix,
		Template:      DefaultTemplate,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = DefaultContextWindow
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}
	if opts.Template == nil {
		opts.Template = DefaultTemplate
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	base := make([]core.Record, len(opts.BaseRecords))
	for i, r := range opts.BaseRecords {
		r.Base = true
		base[i] = r
	}
	opts.BaseRecords = base

	return &Manager{store: store, opts: opts, keys: make(map[string]*sync.Mutex)}
}

// PrefixKey returns the store key for a conversation id.
func (m *Manager) PrefixKey(key string) string {
	return m.opts.KeyPrefix + "-" + key
}

// lockKey serializes mutating operations per conversation key.
func (m *Manager) lockKey(key string) func() {
	m.keysMu.Lock()
	mu, ok := m.keys[key]
	if !ok {
		mu = &sync.Mutex{}
		m.keys[key] = mu
	}
	m.keysMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// transformContent applies the active template to user-role content. Other
// roles pass through unchanged.
func (m *Manager) transformContent(content string, role core.Role, w WriteOptions) string {
	if role != core.RoleUser {
		return content
	}
	tmpl := m.opts.Template
	if w.Template != nil {
		tmpl = w.Template
	}
	vars := make(map[string]string, len(m.opts.Variables)+len(w.Variables))
	for k, v := range m.opts.Variables {
		vars[k] = v
	}
	for k, v := range w.Variables {
		vars[k] = v
	}
	return tmpl.Render(content, vars)
}

// stampContext fills the record timestamp if unset.
func stampContext(r core.Record) core.Record {
	if r.Context.Timestamp.IsZero() {
		r.Context.Timestamp = time.Now().UTC()
	}
	return r
}

// sortChronological orders records oldest first. Records sharing a sequence
// id are ordered by their batch sequence number, which reconstructs insertion
// order even when the store returned them reverse-chronologically.
func sortChronological(records []core.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Context.SequenceID != "" && a.Context.SequenceID == b.Context.SequenceID {
			return a.Context.Sequence < b.Context.Sequence
		}
		return a.Context.Timestamp.Before(b.Context.Timestamp)
	})
}

// fetch reads and decodes a slice of the stored list. The store returns
// newest-first; the result is reversed to oldest-first before sorting.
func (m *Manager) fetch(ctx context.Context, key string, start, stop int) ([]core.Record, error) {
	values, err := m.store.Range(ctx, m.PrefixKey(key), start, stop)
	if err != nil {
		return nil, core.NewStoreError("range", m.PrefixKey(key), err)
	}
	records := make([]core.Record, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		r, err := core.DecodeRecord(values[i])
		if err != nil {
			m.opts.Logger.Warn("skipping undecodable history record", "key", key, "error", err.Error())
			continue
		}
		records = append(records, r)
	}
	sortChronological(records)
	return records, nil
}

func (m *Manager) withBase(records []core.Record, includeBase bool) []core.Record {
	if !includeBase {
		return records
	}
	out := make([]core.Record, 0, len(m.opts.BaseRecords)+len(records))
	out = append(out, m.opts.BaseRecords...)
	return append(out, records...)
}

// Get returns the last ContextWindow records in chronological order,
// optionally prefixed by the base persona records.
func (m *Manager) Get(ctx context.Context, key string, includeBase bool) ([]core.Record, error) {
	records, err := m.fetch(ctx, key, 0, m.opts.ContextWindow+1)
	if err != nil {
		return m.withBase(nil, includeBase), err
	}
	if len(records) > m.opts.ContextWindow {
		records = records[len(records)-m.opts.ContextWindow:]
	}
	return m.withBase(records, includeBase), nil
}

// Everything returns all records in chronological order.
func (m *Manager) Everything(ctx context.Context, key string, includeBase bool) ([]core.Record, error) {
	records, err := m.fetch(ctx, key, 0, -1)
	if err != nil {
		return m.withBase(nil, includeBase), err
	}
	return m.withBase(records, includeBase), nil
}

// Add templates and writes one record, returning the resulting in-memory
// view (bounded or full, per returnEverything) without a second store read.
func (m *Manager) Add(ctx context.Context, key string, record core.Record, returnEverything, includeBase bool, w WriteOptions) ([]core.Record, error) {
	unlock := m.lockKey(key)
	defer unlock()

	record = stampContext(record)
	record.Content = m.transformContent(record.Content, record.Role, w)

	var view []core.Record
	var readErr error
	if returnEverything {
		view, readErr = m.Everything(ctx, key, includeBase)
	} else {
		view, readErr = m.Get(ctx, key, includeBase)
	}
	if readErr != nil {
		m.opts.Logger.Warn("history read failed; continuing with empty view", "key", key, "error", readErr.Error())
	}

	value, err := core.EncodeRecord(record)
	if err != nil {
		return view, err
	}
	if err := m.store.PushFront(ctx, m.PrefixKey(key), value); err != nil {
		return view, core.NewStoreError("push", m.PrefixKey(key), err)
	}
	return append(view, record), nil
}

// AddMany writes a batch of records sharing one sequence id with strictly
// increasing per-record sequence numbers, so a later read reconstructs
// submission order regardless of store read order.
func (m *Manager) AddMany(ctx context.Context, key string, records []core.Record, returnEverything, includeBase bool, w WriteOptions) ([]core.Record, error) {
	if len(records) == 0 {
		if returnEverything {
			return m.Everything(ctx, key, includeBase)
		}
		return m.Get(ctx, key, includeBase)
	}

	unlock := m.lockKey(key)
	defer unlock()

	sequenceID := uuid.NewString()
	batch := make([]core.Record, len(records))
	values := make([]string, len(records))
	for i, r := range records {
		r = stampContext(r)
		r.Content = m.transformContent(r.Content, r.Role, w)
		r.Context.SequenceID = sequenceID
		r.Context.Sequence = i
		batch[i] = r

		value, err := core.EncodeRecord(r)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}

	var view []core.Record
	var readErr error
	if returnEverything {
		view, readErr = m.Everything(ctx, key, includeBase)
	} else {
		view, readErr = m.Get(ctx, key, includeBase)
	}
	if readErr != nil {
		m.opts.Logger.Warn("history read failed; continuing with empty view", "key", key, "error", readErr.Error())
	}

	if err := m.store.PushFront(ctx, m.PrefixKey(key), values...); err != nil {
		return view, core.NewStoreError("push", m.PrefixKey(key), err)
	}
	return append(view, batch...), nil
}

// Remove rewrites the stored list excluding records matching both contextID
// and one of roles. Base records are untouched by construction: they are
// never persisted.
func (m *Manager) Remove(ctx context.Context, key, contextID string, roles []core.Role) ([]core.Record, error) {
	unlock := m.lockKey(key)
	defer unlock()

	all, err := m.Everything(ctx, key, false)
	if err != nil {
		return nil, err
	}
	filtered := make([]core.Record, 0, len(all))
	for _, r := range all {
		if r.ContextID == contextID && r.HasRole(roles) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, m.rewrite(ctx, key, filtered)
}

// RemoveAll removes every record matching one of roles. When roles covers
// every role this is a plain delete of the key.
func (m *Manager) RemoveAll(ctx context.Context, key string, roles []core.Role) ([]core.Record, error) {
	unlock := m.lockKey(key)
	defer unlock()

	if core.ContainsAllRoles(roles) {
		if err := m.store.Delete(ctx, m.PrefixKey(key)); err != nil {
			return nil, core.NewStoreError("delete", m.PrefixKey(key), err)
		}
		return []core.Record{}, nil
	}

	all, err := m.Everything(ctx, key, false)
	if err != nil {
		return nil, err
	}
	filtered := make([]core.Record, 0, len(all))
	for _, r := range all {
		if r.HasRole(roles) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, m.rewrite(ctx, key, filtered)
}

// rewrite replaces the stored list with the given chronological records.
func (m *Manager) rewrite(ctx context.Context, key string, records []core.Record) error {
	if err := m.store.Delete(ctx, m.PrefixKey(key)); err != nil {
		return core.NewStoreError("delete", m.PrefixKey(key), err)
	}
	if len(records) == 0 {
		return nil
	}
	values := make([]string, len(records))
	for i, r := range records {
		value, err := core.EncodeRecord(r)
		if err != nil {
			return err
		}
		values[i] = value
	}
	if err := m.store.PushFront(ctx, m.PrefixKey(key), values...); err != nil {
		return core.NewStoreError("push", m.PrefixKey(key), err)
	}
	return nil
}

// Window returns the configured context window size.
func (m *Manager) Window() int { return m.opts.ContextWindow }

// Template returns the active write template.
func (m *Manager) Template() *Template { return m.opts.Template }

// BaseRecords returns the configured persona records.
func (m *Manager) BaseRecords() []core.Record {
	out := make([]core.Record, len(m.opts.BaseRecords))
	copy(out, m.opts.BaseRecords)
	return out
}
