package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/sony/gobreaker/v2"

	"paramenv/internal/types"
)

// ssmOperationTimeout is the per-operation timeout for SSM API calls.
// Deadlines live here, at the transport boundary, rather than in the
// fetch loop.
const ssmOperationTimeout = 15 * time.Second

// defaultDescribePageSize is the DescribeParameters page size. 50 is the
// SSM API maximum; the pagination loop works the same at any size down
// to 1.
const defaultDescribePageSize = 50

// beginsWithFilterKey and beginsWithFilterOption select the
// DescribeParameters server-side filter that matches parameter names by
// literal prefix.
const (
	beginsWithFilterKey    = "Name"
	beginsWithFilterOption = "BeginsWith"
)

// ssmAPI is the subset of the SSM SDK client used by SSMProvider.
// This interface enables testing with a mock client.
type ssmAPI interface {
	DescribeParameters(ctx context.Context, params *ssm.DescribeParametersInput, optFns ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error)
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// SSMProvider implements ParameterProvider against AWS Systems Manager
// Parameter Store.
//
// The SDK client is constructed lazily, once, behind a mutex: one
// provider instance serves one invocation, but a shared instance is
// still safe on first use. Credential resolution follows the SDK
// default chain (environment, shared config/profile, IMDS); a
// resolution failure is the one fatal setup error of the system and is
// returned from Connect or the first remote call.
//
// Every SSM call runs through a circuit breaker so that a remote outage
// trips to fail-fast instead of hammering the endpoint; a tripped
// breaker surfaces as an ordinary call error, which the fetcher handles
// under its normal partial-failure policy.
type SSMProvider struct {
	region      string
	profile     string
	endpointURL string
	pageSize    int32
	awsCfg      *aws.Config
	breaker     *gobreaker.CircuitBreaker[any]

	mu     sync.Mutex
	client ssmAPI
}

// SSMProviderOption customizes an SSMProvider.
type SSMProviderOption func(*SSMProvider)

// WithProfile sets the AWS shared-config profile used when the client
// is constructed lazily.
func WithProfile(profile string) SSMProviderOption {
	return func(p *SSMProvider) { p.profile = profile }
}

// WithEndpointURL overrides the SSM endpoint. Used for LocalStack and
// other test doubles; empty in production.
func WithEndpointURL(url string) SSMProviderOption {
	return func(p *SSMProvider) { p.endpointURL = url }
}

// WithAWSConfig injects an already-resolved AWS config, skipping the
// lazy LoadDefaultConfig. The CLI uses this to share the config it
// loaded for identity verification.
func WithAWSConfig(cfg aws.Config) SSMProviderOption {
	return func(p *SSMProvider) { p.awsCfg = &cfg }
}

// WithDescribePageSize sets the DescribeParameters page size, clamped
// to [1, 50] by the caller's good judgment; SSM rejects values outside
// that range.
func WithDescribePageSize(n int32) SSMProviderOption {
	return func(p *SSMProvider) { p.pageSize = n }
}

// NewSSMProvider creates an SSMProvider for the given region.
func NewSSMProvider(region string, opts ...SSMProviderOption) *SSMProvider {
	p := &SSMProvider{
		region:   region,
		pageSize: defaultDescribePageSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "ssm-parameter-store",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	return p
}

// NewSSMProviderWithClient creates an SSMProvider with an injected SSM
// client. This constructor is intended for testing.
func NewSSMProviderWithClient(region string, client ssmAPI, opts ...SSMProviderOption) *SSMProvider {
	p := NewSSMProvider(region, opts...)
	p.client = client
	return p
}

// Connect constructs the SSM client if it has not been created yet.
// Calling it is optional (the first remote call connects on demand) but
// lets a caller separate fatal credential/setup failures from the
// tolerated remote-call failures that follow.
func (p *SSMProvider) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensureClientLocked(ctx)
}

// ensureClientLocked initializes the memoized SSM client. Callers must
// hold p.mu.
func (p *SSMProvider) ensureClientLocked(ctx context.Context) error {
	if p.client != nil {
		return nil
	}

	cfg := p.awsCfg
	if cfg == nil {
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(p.region),
		}
		if p.profile != "" {
			opts = append(opts, awsconfig.WithSharedConfigProfile(p.profile))
		}
		loaded, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return fmt.Errorf("loading AWS config for SSM (region=%s): %w", p.region, err)
		}
		cfg = &loaded
	}

	p.client = ssm.NewFromConfig(*cfg, func(o *ssm.Options) {
		if p.endpointURL != "" {
			o.BaseEndpoint = aws.String(p.endpointURL)
		}
	})
	return nil
}

// api returns the memoized client, constructing it on first use.
func (p *SSMProvider) api(ctx context.Context) (ssmAPI, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureClientLocked(ctx); err != nil {
		return nil, err
	}
	return p.client, nil
}

// DescribeParameterNames lists one page of parameter names via
// DescribeParameters, applying a server-side BeginsWith filter when
// prefixes are supplied.
func (p *SSMProvider) DescribeParameterNames(ctx context.Context, prefixes []string, nextToken string) (DescribePage, error) {
	client, err := p.api(ctx)
	if err != nil {
		return DescribePage{}, err
	}

	input := &ssm.DescribeParametersInput{
		MaxResults: aws.Int32(p.pageSize),
	}
	if len(prefixes) > 0 {
		input.ParameterFilters = []ssmtypes.ParameterStringFilter{
			{
				Key:    aws.String(beginsWithFilterKey),
				Option: aws.String(beginsWithFilterOption),
				Values: prefixes,
			},
		}
	}
	if nextToken != "" {
		input.NextToken = aws.String(nextToken)
	}

	out, err := p.execute(ctx, func(opCtx context.Context) (any, error) {
		return client.DescribeParameters(opCtx, input)
	})
	if err != nil {
		return DescribePage{}, fmt.Errorf("describing parameters: %w", err)
	}
	output := out.(*ssm.DescribeParametersOutput)

	page := DescribePage{NextToken: aws.ToString(output.NextToken)}
	for _, metadata := range output.Parameters {
		if metadata.Name != nil {
			page.Names = append(page.Names, *metadata.Name)
		}
	}
	return page, nil
}

// GetParameter fetches a single parameter, decrypting SecureString
// values when decrypt is true.
func (p *SSMProvider) GetParameter(ctx context.Context, name string, decrypt bool) (types.Parameter, error) {
	client, err := p.api(ctx)
	if err != nil {
		return types.Parameter{}, err
	}

	out, err := p.execute(ctx, func(opCtx context.Context) (any, error) {
		return client.GetParameter(opCtx, &ssm.GetParameterInput{
			Name:           aws.String(name),
			WithDecryption: aws.Bool(decrypt),
		})
	})
	if err != nil {
		return types.Parameter{}, fmt.Errorf("reading parameter %q: %w", name, err)
	}
	output := out.(*ssm.GetParameterOutput)

	if output.Parameter == nil || output.Parameter.Value == nil {
		return types.Parameter{}, fmt.Errorf("parameter %q has no value", name)
	}
	return types.Parameter{
		Name:  name,
		Value: types.SecretString(aws.ToString(output.Parameter.Value)),
		Type:  types.ParameterType(output.Parameter.Type),
	}, nil
}

// GetParametersByPath lists one page of parameters under a hierarchy
// path. Values are always decrypted: a by-path fetch exists to inject
// usable values, and SecureString entries would otherwise bind
// ciphertext.
func (p *SSMProvider) GetParametersByPath(ctx context.Context, path string, recursive bool, nextToken string) (ParameterPage, error) {
	client, err := p.api(ctx)
	if err != nil {
		return ParameterPage{}, err
	}

	input := &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(recursive),
		WithDecryption: aws.Bool(true),
	}
	if nextToken != "" {
		input.NextToken = aws.String(nextToken)
	}

	out, err := p.execute(ctx, func(opCtx context.Context) (any, error) {
		return client.GetParametersByPath(opCtx, input)
	})
	if err != nil {
		return ParameterPage{}, fmt.Errorf("fetching parameters by path %q: %w", path, err)
	}
	output := out.(*ssm.GetParametersByPathOutput)

	page := ParameterPage{NextToken: aws.ToString(output.NextToken)}
	for _, param := range output.Parameters {
		if param.Name == nil || param.Value == nil {
			continue
		}
		page.Parameters = append(page.Parameters, types.Parameter{
			Name:  aws.ToString(param.Name),
			Value: types.SecretString(aws.ToString(param.Value)),
			Type:  types.ParameterType(param.Type),
		})
	}
	return page, nil
}

// execute runs one SSM call under the per-operation timeout and the
// circuit breaker.
func (p *SSMProvider) execute(ctx context.Context, call func(ctx context.Context) (any, error)) (any, error) {
	return p.breaker.Execute(func() (any, error) {
		opCtx, cancel := context.WithTimeout(ctx, ssmOperationTimeout)
		defer cancel()
		return call(opCtx)
	})
}
