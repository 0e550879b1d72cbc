// Package lambdautils reads the lambda runtime metadata and builds the
// invocation logger from it.
package lambdautils

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/rs/zerolog"
)

// LambdaMetaData stored details about the current lambda context.
type LambdaMetaData struct {
	FunctionName    string
	FunctionVersion string
	Alias           string
	LogGroupName    string
	LogStreamName   string
	MemoryLimitInMB int
	RequestID       string
	Context         *lambdacontext.LambdaContext
}

// GetLambdaMetaData returns MetaData extracted from the current lambda context.
// Outside of a lambda invocation only the process level fields are set.
func GetLambdaMetaData(ctx context.Context) LambdaMetaData {
	lm := LambdaMetaData{
		FunctionName:    lambdacontext.FunctionName,
		FunctionVersion: lambdacontext.FunctionVersion,
		LogGroupName:    lambdacontext.LogGroupName,
		LogStreamName:   lambdacontext.LogStreamName,
		MemoryLimitInMB: lambdacontext.MemoryLimitInMB,
	}

	lc, ok := lambdacontext.FromContext(ctx)
	if !ok {
		return lm
	}

	lm.Context = lc
	lm.RequestID = lc.AwsRequestID
	lm.Alias = aliasFromArn(lc.InvokedFunctionArn)
	return lm
}

// aliasFromArn returns the qualifier of an invoked function arn, the arn has
// eight segments only when it is qualified.
func aliasFromArn(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) != 8 {
		return ""
	}
	return parts[7]
}

// Logger returns base annotated with the invocation metadata.
func (lm LambdaMetaData) Logger(base zerolog.Logger) zerolog.Logger {
	lc := base.With().
		Str("function", lm.FunctionName).
		Str("version", lm.FunctionVersion).
		Str("logStream", lm.LogStreamName)

	if lm.Alias != "" {
		lc = lc.Str("alias", lm.Alias)
	}
	if lm.RequestID != "" {
		lc = lc.Str("requestId", lm.RequestID)
	}

	return lc.Logger()
}

// WithLogger attaches the invocation logger derived from base to ctx, where
// zerolog.Ctx finds it.
func WithLogger(ctx context.Context, base zerolog.Logger) context.Context {
	logger := GetLambdaMetaData(ctx).Logger(base)
	return logger.WithContext(ctx)
}
