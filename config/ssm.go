package config

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParametersAPI is the subset of the SSM client used to read parameters by path.
type ParametersAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// NewSSMClient builds a Parameter Store client from the default AWS credential chain.
func NewSSMClient(ctx context.Context, region string) (*ssm.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// OverlaySSM copies every parameter under parameterPath into config, keyed by the
// last path segment. Values already present in config win, so a local .env can
// override what is stored remotely.
func OverlaySSM(ctx context.Context, client ParametersAPI, parameterPath string, config map[string]string) error {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(parameterPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("read parameters under %s: %w", parameterPath, err)
		}

		for _, parameter := range page.Parameters {
			key := path.Base(aws.ToString(parameter.Name))
			if _, exists := config[key]; exists {
				continue
			}
			config[key] = aws.ToString(parameter.Value)
			loaded++
		}
	}

	log.Info().Str("path", parameterPath).Int("parameters", loaded).Msg("loaded configuration from SSM")
	return nil
}
