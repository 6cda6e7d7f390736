package webscraper

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner(t *testing.T, prober LinkProber) (*PageScanner, *ResultCache) {
	t.Helper()
	options, _ := testOptions()
	options.Prober = prober
	cache := NewResultCache()
	return NewPageScanner("127.0.0.1", cache, options), cache
}

func TestScanPage_DedupesFragmentsWithinPage(t *testing.T) {
	site := newSite(t)
	site.Page("/p1", `<html><body>
		<a href="/target#top">top</a>
		<a href="/target#bottom">bottom</a>
		<a href="{{base}}/target">abs</a>
	</body></html>`)

	prober := newFakeProber(nil)
	scanner, cache := newTestScanner(t, prober)

	findings, err := scanner.ScanPage(t.Context(), site.URL+"/p1")
	require.NoError(t, err)

	assert.Empty(t, findings)
	assert.Equal(t, 1, prober.Calls(site.URL+"/target"))
	assert.Equal(t, 1, prober.TotalCalls())
	assert.Equal(t, 1, cache.Len())
}

func TestScanPage_FiltersOutOfScopeLinks(t *testing.T) {
	site := newSite(t)
	site.Page("/p1", `<html><body>
		<a href="https://other-domain.com/page">external</a>
		<a href="mailto:a@b.com">mail</a>
		<a href="tel:+123">phone</a>
		<a href="javascript:void(0)">js</a>
		<a href="ftp://127.0.0.1/file">ftp</a>
		<a href="/local">local</a>
	</body></html>`)

	prober := newFakeProber(map[string]ProbeOutcome{"https://other-domain.com/page": Broken(404)})
	scanner, cache := newTestScanner(t, prober)

	findings, err := scanner.ScanPage(t.Context(), site.URL+"/p1")
	require.NoError(t, err)

	assert.Empty(t, findings)
	assert.Equal(t, 0, prober.Calls("https://other-domain.com/page"))
	assert.Equal(t, 1, prober.TotalCalls())
	_, cached := cache.Get("https://other-domain.com/page")
	assert.False(t, cached)
}

func TestScanPage_FragmentOnlyLinkProbesPageItself(t *testing.T) {
	site := newSite(t)
	site.Page("/p1", `<a href="#section">jump</a>`)

	prober := newFakeProber(nil)
	scanner, _ := newTestScanner(t, prober)

	_, err := scanner.ScanPage(t.Context(), site.URL+"/p1")
	require.NoError(t, err)

	assert.Equal(t, 1, prober.Calls(site.URL+"/p1"))
}

func TestScanPage_ReportsBrokenAndErroredLinks(t *testing.T) {
	site := newSite(t)
	site.Page("/p1", `<a href="/ok">ok</a><a href="/missing">x</a><a href="/slow">y</a>`)

	prober := newFakeProber(map[string]ProbeOutcome{
		site.URL + "/missing": Broken(404),
		site.URL + "/slow":    Failed(ErrorTimeout),
	})
	scanner, _ := newTestScanner(t, prober)

	findings, err := scanner.ScanPage(t.Context(), site.URL+"/p1")
	require.NoError(t, err)

	assert.Equal(t, []Finding{
		{URL: site.URL + "/missing", Outcome: Broken(404)},
		{URL: site.URL + "/slow", Outcome: Failed(ErrorTimeout)},
	}, findings)
}

func TestScanPage_UsesCacheWithoutReprobing(t *testing.T) {
	site := newSite(t)
	site.Page("/p1", `<a href="/missing">x</a><a href="/ok">ok</a><a href="/new">new</a>`)

	prober := newFakeProber(nil)
	scanner, cache := newTestScanner(t, prober)
	cache.Store(site.URL+"/missing", Broken(404))
	cache.Store(site.URL+"/ok", OK(200))

	findings, err := scanner.ScanPage(t.Context(), site.URL+"/p1")
	require.NoError(t, err)

	assert.Equal(t, []Finding{{URL: site.URL + "/missing", Outcome: Broken(404)}}, findings)
	assert.Equal(t, 0, prober.Calls(site.URL+"/missing"))
	assert.Equal(t, 0, prober.Calls(site.URL+"/ok"))
	assert.Equal(t, 1, prober.Calls(site.URL+"/new"))
	assert.Equal(t, 3, cache.Len())
}

func TestScanPage_BoundsConcurrency(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, `<a href="/l%d">l</a>`, i)
	}
	site := newSite(t)
	site.Page("/p1", b.String())

	prober := newFakeProber(nil)
	prober.delay = 10 * time.Millisecond

	options, _ := testOptions()
	options.Prober = prober
	options.MaxConcurrency = 4
	scanner := NewPageScanner("127.0.0.1", NewResultCache(), options)

	_, err := scanner.ScanPage(t.Context(), site.URL+"/p1")
	require.NoError(t, err)

	assert.Equal(t, 40, prober.TotalCalls())
	assert.LessOrEqual(t, prober.maxInFlight.Load(), int32(4))
	assert.Equal(t, int32(0), prober.inFlight.Load(), "scan returned before all probes finished")
}

func TestScanPage_BrokenPagePolicies(t *testing.T) {
	site := newSite(t)
	site.Status("/gone", http.StatusNotFound)

	t.Run("report", func(t *testing.T) {
		scanner, cache := newTestScanner(t, newFakeProber(nil))

		findings, err := scanner.ScanPage(t.Context(), site.URL+"/gone")

		var statusErr *PageStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, []Finding{{URL: site.URL + "/gone", Outcome: Broken(404)}}, findings)
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("skip", func(t *testing.T) {
		options, hook := testOptions()
		options.Prober = newFakeProber(nil)
		options.PageErrorPolicy = PageErrorSkip
		scanner := NewPageScanner("127.0.0.1", NewResultCache(), options)

		findings, err := scanner.ScanPage(t.Context(), site.URL+"/gone")

		assert.ErrorIs(t, err, ErrPageFetch)
		assert.Empty(t, findings)
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	})
}

func TestScanPage_PageTransportFailure(t *testing.T) {
	site := newSite(t)
	url := site.URL + "/p1"
	site.Close()

	options, hook := testOptions()
	prober := newFakeProber(nil)
	options.Prober = prober
	scanner := NewPageScanner("127.0.0.1", NewResultCache(), options)

	findings, err := scanner.ScanPage(t.Context(), url)

	assert.ErrorIs(t, err, ErrPageFetch)
	assert.Empty(t, findings)
	assert.Equal(t, 0, prober.TotalCalls())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.ErrorIs(t, hook.LastEntry().Data[logrus.ErrorKey].(error), ErrPageFetch)
}

func TestScanPage_MalformedHrefIsDiscarded(t *testing.T) {
	site := newSite(t)
	site.Page("/p1", `<a href="http://[::1">bad</a><a href="/fine">fine</a>`)

	prober := newFakeProber(nil)
	scanner, _ := newTestScanner(t, prober)

	findings, err := scanner.ScanPage(t.Context(), site.URL+"/p1")
	require.NoError(t, err)

	assert.Empty(t, findings)
	assert.Equal(t, 1, prober.TotalCalls())
	assert.Equal(t, 1, prober.Calls(site.URL+"/fine"))
}

func TestScanPage_NoAnchors(t *testing.T) {
	site := newSite(t)
	site.Page("/p1", `<html><body><p>nothing here</p></body></html>`)

	prober := newFakeProber(nil)
	scanner, cache := newTestScanner(t, prober)

	findings, err := scanner.ScanPage(t.Context(), site.URL+"/p1")
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Equal(t, 0, prober.TotalCalls())
	assert.Equal(t, 0, cache.Len())
}
