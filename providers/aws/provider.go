// Package aws implements the compute provider over the EC2 API.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/rioslabs/reaper/retry"
)

// Options configure the EC2 provider.
type Options struct {
	Region  string
	Profile string
	Retry   retry.Policy
}

// Provider implements providers.ComputeProvider against EC2.
type Provider struct {
	client EC2API
	region string
	retry  retry.Policy
}

// New loads the AWS configuration for the given profile and region and
// returns an EC2-backed provider.
func New(ctx context.Context, opts Options) (*Provider, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return NewWithClient(ec2.NewFromConfig(cfg), opts.Region, opts.Retry), nil
}

// NewWithClient wires a provider around an existing EC2 client.
func NewWithClient(client EC2API, region string, policy retry.Policy) *Provider {
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy()
	}
	return &Provider{
		client: client,
		region: region,
		retry:  policy,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "aws"
}

// Region returns the configured region.
func (p *Provider) Region() string {
	return p.region
}
