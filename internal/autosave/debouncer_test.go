package autosave

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	saves []string
}

func (r *recorder) save(key string, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, key+"="+value)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saves...)
}

func TestQueueCoalescesRapidSaves(t *testing.T) {
	rec := &recorder{}
	d := New[string, string](20*time.Millisecond, rec.save)
	defer d.Close()

	d.Queue("k", "v1")
	d.Queue("k", "v2")
	d.Queue("k", "v3")

	require.Eventually(t, func() bool {
		return len(rec.all()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"k=v3"}, rec.all())
}

func TestQueueSeparateKeys(t *testing.T) {
	rec := &recorder{}
	d := New[string, string](20*time.Millisecond, rec.save)
	defer d.Close()

	d.Queue("a", "1")
	d.Queue("b", "2")

	require.Eventually(t, func() bool {
		return len(rec.all()) == 2
	}, time.Second, 5*time.Millisecond)

	assert.ElementsMatch(t, []string{"a=1", "b=2"}, rec.all())
}

func TestFlushSavesImmediately(t *testing.T) {
	rec := &recorder{}
	d := New[string, string](time.Hour, rec.save)
	defer d.Close()

	d.Queue("k", "v1")
	d.Flush()

	assert.Equal(t, []string{"k=v1"}, rec.all())

	// Flushing again does nothing
	d.Flush()
	assert.Equal(t, []string{"k=v1"}, rec.all())
}

func TestCloseFlushesAndRejectsNewWork(t *testing.T) {
	rec := &recorder{}
	d := New[string, string](time.Hour, rec.save)

	d.Queue("k", "v1")
	d.Close()

	assert.Equal(t, []string{"k=v1"}, rec.all())

	d.Queue("k", "v2")
	d.Flush()
	assert.Equal(t, []string{"k=v1"}, rec.all())
}
