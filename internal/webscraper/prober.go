package webscraper

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/yingtu35/sitemap-link-hunter/pkg/domain"
	"golang.org/x/time/rate"
)

// LinkProber checks the reachability of a single URL
type LinkProber interface {
	Probe(ctx context.Context, url string) ProbeOutcome
}

// Prober is the HTTP implementation of LinkProber.
// It holds no per-URL state and is safe for concurrent use.
type Prober struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	limiter   *rate.Limiter // nil when probes are not rate limited
}

func NewProber(options *ScraperOptions) *Prober {
	options = options.withDefaults()

	var limiter *rate.Limiter
	if options.RequestsPerSecond > 0 {
		burst := int(options.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)
	}

	return &Prober{
		client:    options.newClient(),
		timeout:   options.LinkTimeout,
		userAgent: options.UserAgent,
		limiter:   limiter,
	}
}

// Probe issues a GET for url and classifies the result. Only the status line
// is waited for, the body is closed unread.
func (p *Prober) Probe(ctx context.Context, url string) ProbeOutcome {
	if domain.IsSkippable(url) {
		return Skipped()
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Failed(classifyError(err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Failed(ErrorOther)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return Failed(classifyError(err))
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Broken(resp.StatusCode)
	}
	return OK(resp.StatusCode)
}

// classifyError maps a transport error to an ErrorKind. Timeouts win over
// connection errors, so a dial that times out is a timeout. A failed TLS
// handshake means the connection could not be established.
func classifyError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ErrorConnection
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrorConnection
	}
	if isTLSError(err) {
		return ErrorConnection
	}
	return ErrorOther
}

func isTLSError(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	var authorityErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	var recordErr tls.RecordHeaderError
	return errors.As(err, &verifyErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &recordErr)
}
