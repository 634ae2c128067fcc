package checker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
	sharederrors "github.com/khanhnv2901/reality-check/internal/shared/errors"
)

// Resolver looks hosts up against an explicit list of nameservers instead of
// the system resolver. Servers are tried in order until one answers.
type Resolver struct {
	Servers []string
	Timeout time.Duration

	client *dns.Client
}

// NewResolver normalizes servers to host:port. With no servers it falls back to
// the nameservers listed in /etc/resolv.conf.
func NewResolver(servers []string, timeout time.Duration) (*Resolver, error) {
	if timeout <= 0 {
		timeout = consts.DNSQueryTimeout
	}

	var normalized []string
	for _, s := range servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, consts.DefaultDNSPort)
		}
		normalized = append(normalized, s)
	}

	if len(normalized) == 0 {
		sysConfig, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sharederrors.ErrNoNameservers, err)
		}
		for _, ip := range sysConfig.Servers {
			normalized = append(normalized, net.JoinHostPort(ip, sysConfig.Port))
		}
	}
	if len(normalized) == 0 {
		return nil, sharederrors.ErrNoNameservers
	}

	return &Resolver{
		Servers: normalized,
		Timeout: timeout,
		client:  &dns.Client{Net: "udp", Timeout: timeout},
	}, nil
}

// LookupIP returns the A and AAAA addresses of host, IPv4 first.
func (r *Resolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}

	var ips []net.IP
	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		found, err := r.query(ctx, host, qtype)
		if err != nil {
			if errors.Is(err, sharederrors.ErrNXDomain) {
				return nil, err
			}
			lastErr = err
			continue
		}
		ips = append(ips, found...)
	}

	if len(ips) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("%w for %s", sharederrors.ErrNoAddresses, host)
	}
	return ips, nil
}

func (r *Resolver) query(ctx context.Context, host string, qtype uint16) ([]net.IP, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range r.Servers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = fmt.Errorf("query %s via %s: %w", dns.TypeToString[qtype], server, err)
			continue
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			return nil, fmt.Errorf("%w: %s", sharederrors.ErrNXDomain, host)
		default:
			lastErr = fmt.Errorf("query %s via %s: rcode %s", dns.TypeToString[qtype], server, dns.RcodeToString[resp.Rcode])
			continue
		}

		var ips []net.IP
		for _, rr := range resp.Answer {
			switch rec := rr.(type) {
			case *dns.A:
				ips = append(ips, rec.A)
			case *dns.AAAA:
				ips = append(ips, rec.AAAA)
			}
		}
		return ips, nil
	}
	return nil, lastErr
}

// DialContext returns a dial function that resolves through r and tries each
// address in turn.
func (r *Resolver) DialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		ips, err := r.LookupIP(ctx, host)
		if err != nil {
			return nil, err
		}

		var lastErr error
		for _, ip := range ips {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip.String(), port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		return nil, lastErr
	}
}
