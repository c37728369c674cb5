package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"paramenv/internal/types"
)

// mockSSM implements ssmAPI for testing. It records calls and returns
// configurable responses/errors.
type mockSSM struct {
	describeFn func(ctx context.Context, input *ssm.DescribeParametersInput) (*ssm.DescribeParametersOutput, error)
	getFn      func(ctx context.Context, input *ssm.GetParameterInput) (*ssm.GetParameterOutput, error)
	byPathFn   func(ctx context.Context, input *ssm.GetParametersByPathInput) (*ssm.GetParametersByPathOutput, error)

	describeCalls []*ssm.DescribeParametersInput
	getCalls      []*ssm.GetParameterInput
	byPathCalls   []*ssm.GetParametersByPathInput
}

func (m *mockSSM) DescribeParameters(ctx context.Context, params *ssm.DescribeParametersInput, _ ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error) {
	m.describeCalls = append(m.describeCalls, params)
	if m.describeFn != nil {
		return m.describeFn(ctx, params)
	}
	return &ssm.DescribeParametersOutput{}, nil
}

func (m *mockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	m.getCalls = append(m.getCalls, params)
	if m.getFn != nil {
		return m.getFn(ctx, params)
	}
	return &ssm.GetParameterOutput{}, nil
}

func (m *mockSSM) GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	m.byPathCalls = append(m.byPathCalls, params)
	if m.byPathFn != nil {
		return m.byPathFn(ctx, params)
	}
	return &ssm.GetParametersByPathOutput{}, nil
}

func TestSSMProviderSatisfiesParameterProvider(t *testing.T) {
	var _ ParameterProvider = (*SSMProvider)(nil)
	var _ ParameterProvider = NewSSMProvider("us-east-1")
}

func TestDescribeParameterNames_FilterConstruction(t *testing.T) {
	mock := &mockSSM{}
	p := NewSSMProviderWithClient("us-east-1", mock)

	_, err := p.DescribeParameterNames(context.Background(), []string{"prefix1", "prefix2_name2"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.describeCalls) != 1 {
		t.Fatalf("expected 1 DescribeParameters call, got %d", len(mock.describeCalls))
	}
	input := mock.describeCalls[0]
	if len(input.ParameterFilters) != 1 {
		t.Fatalf("expected 1 parameter filter, got %d", len(input.ParameterFilters))
	}
	filter := input.ParameterFilters[0]
	if aws.ToString(filter.Key) != "Name" {
		t.Errorf("filter key = %q, want %q", aws.ToString(filter.Key), "Name")
	}
	if aws.ToString(filter.Option) != "BeginsWith" {
		t.Errorf("filter option = %q, want %q", aws.ToString(filter.Option), "BeginsWith")
	}
	if len(filter.Values) != 2 || filter.Values[0] != "prefix1" || filter.Values[1] != "prefix2_name2" {
		t.Errorf("filter values = %v, want [prefix1 prefix2_name2]", filter.Values)
	}
	if input.NextToken != nil {
		t.Error("first page must not carry a continuation token")
	}
}

func TestDescribeParameterNames_NoFilterWithoutPrefixes(t *testing.T) {
	mock := &mockSSM{}
	p := NewSSMProviderWithClient("us-east-1", mock)

	_, err := p.DescribeParameterNames(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.describeCalls[0].ParameterFilters) != 0 {
		t.Error("expected no parameter filters without prefixes")
	}
}

func TestDescribeParameterNames_PageMapping(t *testing.T) {
	mock := &mockSSM{
		describeFn: func(_ context.Context, input *ssm.DescribeParametersInput) (*ssm.DescribeParametersOutput, error) {
			if input.NextToken != nil {
				t.Errorf("unexpected continuation token %q", aws.ToString(input.NextToken))
			}
			return &ssm.DescribeParametersOutput{
				Parameters: []ssmtypes.ParameterMetadata{
					{Name: aws.String("one")},
					{Name: nil}, // degenerate metadata entry, dropped
					{Name: aws.String("two")},
				},
				NextToken: aws.String("cursor"),
			}, nil
		},
	}
	p := NewSSMProviderWithClient("us-east-1", mock)

	page, err := p.DescribeParameterNames(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Names) != 2 || page.Names[0] != "one" || page.Names[1] != "two" {
		t.Errorf("page names = %v, want [one two]", page.Names)
	}
	if page.NextToken != "cursor" {
		t.Errorf("next token = %q, want %q", page.NextToken, "cursor")
	}
}

func TestDescribeParameterNames_TokenPassedThrough(t *testing.T) {
	mock := &mockSSM{}
	p := NewSSMProviderWithClient("us-east-1", mock)

	_, err := p.DescribeParameterNames(context.Background(), nil, "resume-here")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := aws.ToString(mock.describeCalls[0].NextToken); got != "resume-here" {
		t.Errorf("NextToken = %q, want %q", got, "resume-here")
	}
}

func TestGetParameter_Success(t *testing.T) {
	mock := &mockSSM{
		getFn: func(_ context.Context, input *ssm.GetParameterInput) (*ssm.GetParameterOutput, error) {
			return &ssm.GetParameterOutput{
				Parameter: &ssmtypes.Parameter{
					Name:  input.Name,
					Value: aws.String("plaintext"),
					Type:  ssmtypes.ParameterTypeSecureString,
				},
			}, nil
		},
	}
	p := NewSSMProviderWithClient("us-east-1", mock)

	param, err := p.GetParameter(context.Background(), "my-param1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if param.Name != "my-param1" {
		t.Errorf("name = %q, want %q", param.Name, "my-param1")
	}
	if param.Value.Unmask() != "plaintext" {
		t.Errorf("value = %q, want %q", param.Value.Unmask(), "plaintext")
	}
	if param.Type != types.ParameterTypeSecureString {
		t.Errorf("type = %q, want SecureString", param.Type)
	}
	if !aws.ToBool(mock.getCalls[0].WithDecryption) {
		t.Error("expected WithDecryption=true")
	}
}

func TestGetParameter_NoValue(t *testing.T) {
	mock := &mockSSM{
		getFn: func(_ context.Context, _ *ssm.GetParameterInput) (*ssm.GetParameterOutput, error) {
			return &ssm.GetParameterOutput{}, nil
		},
	}
	p := NewSSMProviderWithClient("us-east-1", mock)

	_, err := p.GetParameter(context.Background(), "empty", true)
	if err == nil {
		t.Fatal("expected error for parameter without value, got nil")
	}
}

func TestGetParametersByPath_InputAndMapping(t *testing.T) {
	mock := &mockSSM{
		byPathFn: func(_ context.Context, input *ssm.GetParametersByPathInput) (*ssm.GetParametersByPathOutput, error) {
			return &ssm.GetParametersByPathOutput{
				Parameters: []ssmtypes.Parameter{
					{Name: aws.String("/svc/a"), Value: aws.String("1"), Type: ssmtypes.ParameterTypeString},
					{Name: aws.String("/svc/b"), Value: nil}, // dropped
					{Name: aws.String("/svc/c"), Value: aws.String("3"), Type: ssmtypes.ParameterTypeStringList},
				},
				NextToken: aws.String("next"),
			}, nil
		},
	}
	p := NewSSMProviderWithClient("us-east-1", mock)

	page, err := p.GetParametersByPath(context.Background(), "/svc/", true, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := mock.byPathCalls[0]
	if aws.ToString(input.Path) != "/svc/" {
		t.Errorf("Path = %q, want %q", aws.ToString(input.Path), "/svc/")
	}
	if !aws.ToBool(input.Recursive) {
		t.Error("expected Recursive=true")
	}
	if !aws.ToBool(input.WithDecryption) {
		t.Error("expected WithDecryption=true for by-path fetches")
	}

	if len(page.Parameters) != 2 {
		t.Fatalf("expected 2 parameters after dropping the degenerate entry, got %d", len(page.Parameters))
	}
	if page.Parameters[0].Name != "/svc/a" || page.Parameters[0].Value.Unmask() != "1" {
		t.Errorf("first parameter = %+v", page.Parameters[0])
	}
	if page.Parameters[1].Type != types.ParameterTypeStringList {
		t.Errorf("type = %q, want StringList", page.Parameters[1].Type)
	}
	if page.NextToken != "next" {
		t.Errorf("next token = %q, want %q", page.NextToken, "next")
	}
}

func TestGetParametersByPath_Error(t *testing.T) {
	mock := &mockSSM{
		byPathFn: func(_ context.Context, _ *ssm.GetParametersByPathInput) (*ssm.GetParametersByPathOutput, error) {
			return nil, fmt.Errorf("access denied")
		},
	}
	p := NewSSMProviderWithClient("us-east-1", mock)

	_, err := p.GetParametersByPath(context.Background(), "/svc/", false, "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// After enough consecutive failures the circuit breaker opens and calls
// fail fast without reaching SSM.
func TestSSMProvider_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	mock := &mockSSM{
		getFn: func(_ context.Context, _ *ssm.GetParameterInput) (*ssm.GetParameterOutput, error) {
			return nil, fmt.Errorf("internal error")
		},
	}
	p := NewSSMProviderWithClient("us-east-1", mock)

	// The breaker trips after more than 5 consecutive failures.
	for i := 0; i < 6; i++ {
		if _, err := p.GetParameter(context.Background(), "failing", true); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	callsBefore := len(mock.getCalls)
	_, err := p.GetParameter(context.Background(), "failing", true)
	if err == nil {
		t.Fatal("expected error from open breaker, got nil")
	}
	if len(mock.getCalls) != callsBefore {
		t.Errorf("open breaker still reached SSM: %d calls, want %d", len(mock.getCalls), callsBefore)
	}
}

func TestSSMProviderOptions(t *testing.T) {
	p := NewSSMProvider("eu-west-1",
		WithProfile("build"),
		WithEndpointURL("http://localhost:4566"),
		WithDescribePageSize(1),
	)
	if p.region != "eu-west-1" {
		t.Errorf("region = %q, want %q", p.region, "eu-west-1")
	}
	if p.profile != "build" {
		t.Errorf("profile = %q, want %q", p.profile, "build")
	}
	if p.endpointURL != "http://localhost:4566" {
		t.Errorf("endpointURL = %q", p.endpointURL)
	}
	if p.pageSize != 1 {
		t.Errorf("pageSize = %d, want 1", p.pageSize)
	}
}

func TestConnect_WithInjectedClientIsNoOp(t *testing.T) {
	mock := &mockSSM{}
	p := NewSSMProviderWithClient("us-east-1", mock)

	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.client != ssmAPI(mock) {
		t.Error("Connect must not replace an injected client")
	}
}
