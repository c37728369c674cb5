// Package main implements the paramenv CLI.
//
// paramenv fetches parameters from AWS SSM Parameter Store and exposes
// them as environment variables to a build or execution context.
//
// Usage:
//
//	paramenv --path=/service/app/ --recursive --naming=relative
//	paramenv --name-prefixes=prod_web_,prod_db_ --output=.env
//	paramenv --path=/ci/build/ -- make release
//
// The tool performs the following:
//  1. Loads configuration from the environment (plus an optional .env
//     file) and applies CLI flag overrides.
//  2. Resolves the AWS SDK config for the target region/profile and,
//     with --verify-identity, confirms the active identity via STS.
//  3. Fetches parameters: a flat filtered listing when no --path is
//     given, or a hierarchy listing under --path otherwise. Remote
//     failures degrade to warnings; the run proceeds with whatever
//     subset succeeded.
//  4. Emits the bindings: POSIX export lines on stdout (default), a
//     dotenv file (--output), or the environment of a child process
//     (arguments after "--").
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/google/uuid"
	"golang.org/x/term"

	"paramenv/internal/config"
	"paramenv/internal/envsink"
	"paramenv/internal/store"
	"paramenv/internal/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// Flag defaults come from the loaded config, so flags override the
	// environment and .env layers.
	regionFlag := flag.String("region", cfg.Region, "AWS region hosting the parameter store")
	profileFlag := flag.String("profile", cfg.Profile, "AWS shared-config profile (default: SDK default chain)")
	endpointFlag := flag.String("endpoint-url", cfg.EndpointURL, "SSM endpoint override (LocalStack)")
	pathFlag := flag.String("path", cfg.Path, "Parameter hierarchy root; empty selects the flat listing")
	recursiveFlag := flag.Bool("recursive", cfg.Recursive, "Fetch all parameters within the hierarchy")
	namingFlag := flag.String("naming", cfg.Naming, "Variable naming for --path fetches: basename, relative, absolute")
	prefixesFlag := flag.String("name-prefixes", cfg.NamePrefixes, "Comma-delimited name prefix filters (flat listing only)")
	verifyFlag := flag.Bool("verify-identity", false, "Call STS GetCallerIdentity before fetching")
	outputFlag := flag.String("output", "", "Write bindings to a dotenv file instead of stdout")
	logLevelFlag := flag.String("log-level", cfg.LogLevel, "Log verbosity: debug, info, warn, error")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "paramenv - AWS Parameter Store environment injector\n\n")
		fmt.Fprintf(os.Stderr, "Fetches SSM parameters and exposes them as environment variables:\n")
		fmt.Fprintf(os.Stderr, "printed as shell exports, written to a dotenv file, or injected\n")
		fmt.Fprintf(os.Stderr, "into a child process.\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  paramenv [flags]\n")
		fmt.Fprintf(os.Stderr, "  paramenv [flags] -- CMD [ARGS...]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(*logLevelFlag),
	}))
	logger = logger.With("run_id", uuid.NewString())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	awsCfg, err := loadAWSConfig(ctx, *regionFlag, *profileFlag)
	if err != nil {
		logger.Error("AWS setup failed", "error", err)
		return 1
	}

	if *verifyFlag {
		if err := verifyIdentity(ctx, awsCfg, *regionFlag, logger); err != nil {
			logger.Error("identity verification failed", "error", err)
			return 1
		}
	}

	provider := store.NewSSMProvider(*regionFlag,
		store.WithAWSConfig(awsCfg),
		store.WithEndpointURL(*endpointFlag),
	)
	if err := provider.Connect(ctx); err != nil {
		logger.Error("cannot construct parameter store client", "error", err)
		return 1
	}

	req := types.FetchRequest{
		Path:         *pathFlag,
		Recursive:    *recursiveFlag,
		Naming:       types.ParseNamingMode(*namingFlag),
		NamePrefixes: types.ParseNamePrefixes(*prefixesFlag),
	}

	sink := envsink.NewMapSink()
	fetcher := store.NewFetcher(provider, logger)
	if err := fetcher.Fetch(ctx, req, sink); err != nil {
		logger.Error("fetch failed", "error", err)
		return 1
	}

	logger.Info("parameters fetched",
		"bindings", sink.Len(),
		"region", *regionFlag,
		"path", *pathFlag,
	)

	// Arguments after "--" select exec mode.
	if argv := flag.Args(); len(argv) > 0 {
		return execChild(ctx, argv, sink, logger)
	}

	if *outputFlag != "" {
		if err := envsink.WriteEnvFile(*outputFlag, sink.Bindings(), *regionFlag, *pathFlag); err != nil {
			logger.Error("cannot write env file", "error", err)
			return 1
		}
		logger.Info("env file written", "path", *outputFlag)
		return 0
	}

	if sink.Len() > 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		logger.Warn("writing parameter values to a terminal; decrypted secrets may be displayed")
	}
	if err := envsink.WriteExports(os.Stdout, sink.Bindings()); err != nil {
		logger.Error("cannot write export lines", "error", err)
		return 1
	}
	return 0
}

// loadAWSConfig resolves the AWS SDK configuration for the target
// region and optional profile. Credentials come from the default chain:
// environment -> shared credentials -> EC2 IMDS.
func loadAWSConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return cfg, nil
}

// verifyIdentity calls STS GetCallerIdentity to confirm the active AWS
// identity before any parameter is fetched. A short timeout fails fast
// on bad credentials.
func verifyIdentity(ctx context.Context, cfg aws.Config, region string, logger *slog.Logger) error {
	stsClient := sts.NewFromConfig(cfg)

	identityCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	identity, err := stsClient.GetCallerIdentity(identityCtx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("verifying AWS identity (STS GetCallerIdentity): %w", err)
	}

	logger.Info("AWS identity verified",
		"account_id", aws.ToString(identity.Account),
		"arn", aws.ToString(identity.Arn),
		"region", region,
	)
	return nil
}

// parseLogLevel maps the configured level name to a slog.Level,
// defaulting to info for anything unrecognized.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
