package jobs

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/Arthur1/request-cache/search"
)

func TestNewSearcher(t *testing.T) {
	t.Parallel()
	var counter int64
	ts := newJobsServer(t, &counter, http.StatusOK, remotiveBody)
	clock := clockwork.NewFakeClock()

	s := NewSearcher(newTestClient(ts), Query{Location: "europe"}, search.WithClock(clock), search.WithLogger(discardLogger))
	defer s.Close()

	s.SetQuery("g")
	clock.Advance(searchDebounce)
	assert.Eventually(t, func() bool {
		return s.State().Query == "g" && !s.State().Loading
	}, time.Second, time.Millisecond)
	assert.Zero(t, atomic.LoadInt64(&counter), "query below the minimum length")

	s.SetQuery("go")
	clock.Advance(searchDebounce - time.Millisecond)
	assert.Zero(t, atomic.LoadInt64(&counter))
	clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool {
		st := s.State()
		return !st.Loading && len(st.Results) == 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&counter))
}
