package channel

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	grpcoauth "google.golang.org/grpc/credentials/oauth"

	"github.com/kbukum/rpckit/channel/interceptor"
	"github.com/kbukum/rpckit/errors"
	"github.com/kbukum/rpckit/logger"
	"github.com/kbukum/rpckit/security"
	"github.com/kbukum/rpckit/version"
)

// Channel is a live, intercepted client connection. It embeds
// *grpc.ClientConn, so generated client stubs accept it directly. Safe for
// concurrent use; the owner releases it with Close.
type Channel struct {
	*grpc.ClientConn

	chain   *interceptor.Chain
	trust   security.TrustConfig
	options []Option
}

// New builds an authenticated, encrypted, resilient channel to cfg.Address.
//
// Trust is resolved first (the only step that may touch the network, on the
// certificate-pinning path), then the option block is assembled and the
// connection is created with TLS transport credentials composed with a
// bearer-token per-RPC credential. The connection itself is lazy: an
// unreachable endpoint does not fail New, it fails the first call after the
// retry policy is exhausted.
//
// Returns ErrCodeConnection or ErrCodeCertificateParse when trust resolution
// fails.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Channel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDefault("rpckit")
	}
	log = log.WithComponent("channel")

	trust, err := security.ResolveTrust(ctx, cfg.Address, !cfg.SkipVerify, cfg.ForceAnchorLoad)
	if err != nil {
		log.Error("trust resolution failed", logger.Fields(
			logger.FieldTarget, cfg.Address,
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	options := BuildOptions(cfg.ExtraOptions, trust.HostnameOverride)

	tlsCfg, err := trust.ClientTLSConfig()
	if err != nil {
		return nil, errors.Connection(cfg.Address, err)
	}

	chain, err := interceptor.NewChain(cfg.CallLogPath)
	if err != nil {
		return nil, fmt.Errorf("channel: open call log %s: %w", cfg.CallLogPath, err)
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(credentials.NewTLS(tlsCfg)),
		grpc.WithPerRPCCredentials(grpcoauth.TokenSource{
			TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken}),
		}),
		grpc.WithUserAgent(version.UserAgent()),
	}
	dialOpts = append(dialOpts, dialOptions(options)...)

	unary := chain.Unary()
	if cfg.CallTimeout > 0 {
		unary = append([]grpc.UnaryClientInterceptor{interceptor.UnaryTimeout(cfg.CallTimeout)}, unary...)
	}
	dialOpts = append(dialOpts,
		grpc.WithChainUnaryInterceptor(unary...),
		grpc.WithChainStreamInterceptor(chain.Stream()...),
	)

	conn, err := grpc.NewClient(cfg.Address, dialOpts...)
	if err != nil {
		_ = chain.Close()
		return nil, errors.Connection(cfg.Address, err)
	}

	log.Info("channel created", logger.Fields(
		logger.FieldTarget, cfg.Address,
		"pinned", trust.Pinned(),
		"hostname_override", trust.HostnameOverride,
	))

	return &Channel{
		ClientConn: conn,
		chain:      chain,
		trust:      trust,
		options:    options,
	}, nil
}

// Trust returns the resolved trust posture of the channel.
func (c *Channel) Trust() security.TrustConfig { return c.trust }

// Options returns a copy of the channel's tuning parameters.
func (c *Channel) Options() []Option {
	out := make([]Option, len(c.options))
	copy(out, c.options)
	return out
}

// Close tears down the transport connection and releases the interception
// chain's resources.
func (c *Channel) Close() error {
	connErr := c.ClientConn.Close()
	chainErr := c.chain.Close()
	if connErr != nil {
		return connErr
	}
	return chainErr
}
