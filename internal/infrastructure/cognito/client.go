package cognito

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/qwiktax/lsp-oms/internal/config"
	"github.com/qwiktax/lsp-oms/internal/domain"
)

// Client wraps the Cognito user pool the application delegates credential
// management to. Passwords, verification codes and password resets never
// touch the application store; this client is the only path to them.
type Client struct {
	api        *cip.Client
	userPoolID string
}

func NewClient(cfg *config.Config) *Client {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.CognitoRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		panic("failed to load AWS config: " + err.Error())
	}
	clientOpts := []func(*cip.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *cip.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &Client{
		api:        cip.NewFromConfig(awsCfg, clientOpts...),
		userPoolID: cfg.CognitoUserPoolID,
	}
}

// SignUp registers a user against the pool with the given custom
// attributes. The pool sends the email verification code itself.
func (c *Client) SignUp(ctx context.Context, clientID, username, password string, attrs map[string]string) error {
	_, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(clientID),
		Username:       aws.String(username),
		Password:       aws.String(password),
		UserAttributes: toAttributes(attrs),
	})
	return mapError(err)
}

func (c *Client) ConfirmSignUp(ctx context.Context, clientID, username, code string) error {
	_, err := c.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
	})
	return mapError(err)
}

func (c *Client) ResendConfirmationCode(ctx context.Context, clientID, username string) error {
	_, err := c.api.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId: aws.String(clientID),
		Username: aws.String(username),
	})
	return mapError(err)
}

func (c *Client) ForgotPassword(ctx context.Context, clientID, username string) error {
	_, err := c.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(clientID),
		Username: aws.String(username),
	})
	return mapError(err)
}

func (c *Client) ConfirmForgotPassword(ctx context.Context, clientID, username, password, code string) error {
	_, err := c.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(clientID),
		Username:         aws.String(username),
		Password:         aws.String(password),
		ConfirmationCode: aws.String(code),
	})
	return mapError(err)
}

// InitiateAuth runs the username/password flow and returns the pool-issued
// ID token.
func (c *Client) InitiateAuth(ctx context.Context, clientID, username, password string) (string, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId: aws.String(clientID),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return "", mapError(err)
	}
	if out.AuthenticationResult == nil || out.AuthenticationResult.IdToken == nil {
		return "", fmt.Errorf("authentication produced no token: %w", domain.ErrUnauthorized)
	}
	return *out.AuthenticationResult.IdToken, nil
}

// AdminGetUser fetches a pool user with its flattened attribute set.
func (c *Client) AdminGetUser(ctx context.Context, username string) (domain.DirectoryUser, error) {
	out, err := c.api.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return domain.DirectoryUser{}, mapError(err)
	}
	user := domain.DirectoryUser{
		Username:   aws.ToString(out.Username),
		Status:     string(out.UserStatus),
		Enabled:    out.Enabled,
		Attributes: fromAttributes(out.UserAttributes),
	}
	if out.UserCreateDate != nil {
		user.CreateDate = out.UserCreateDate.UnixMilli()
	}
	return user, nil
}

func (c *Client) AdminUpdateUserAttributes(ctx context.Context, username string, attrs map[string]string) error {
	_, err := c.api.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
		UserPoolId:     aws.String(c.userPoolID),
		Username:       aws.String(username),
		UserAttributes: toAttributes(attrs),
	})
	return mapError(err)
}

func (c *Client) AdminConfirmSignUp(ctx context.Context, username string) error {
	_, err := c.api.AdminConfirmSignUp(ctx, &cip.AdminConfirmSignUpInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(username),
	})
	return mapError(err)
}

func (c *Client) AdminDeleteUser(ctx context.Context, username string) error {
	_, err := c.api.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(username),
	})
	return mapError(err)
}

// ListUsers pages through the whole pool. The pool is small enough that the
// superadmin listings read it in full and join against the store.
func (c *Client) ListUsers(ctx context.Context) ([]domain.DirectoryUser, error) {
	var users []domain.DirectoryUser
	var token *string
	for {
		out, err := c.api.ListUsers(ctx, &cip.ListUsersInput{
			UserPoolId:      aws.String(c.userPoolID),
			PaginationToken: token,
		})
		if err != nil {
			return nil, mapError(err)
		}
		for _, u := range out.Users {
			user := domain.DirectoryUser{
				Username:   aws.ToString(u.Username),
				Status:     string(u.UserStatus),
				Enabled:    u.Enabled,
				Attributes: fromAttributes(u.Attributes),
			}
			if u.UserCreateDate != nil {
				user.CreateDate = u.UserCreateDate.UnixMilli()
			}
			users = append(users, user)
		}
		if out.PaginationToken == nil {
			return users, nil
		}
		token = out.PaginationToken
	}
}

func toAttributes(attrs map[string]string) []types.AttributeType {
	out := make([]types.AttributeType, 0, len(attrs))
	for name, value := range attrs {
		out = append(out, types.AttributeType{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}
	return out
}

func fromAttributes(attrs []types.AttributeType) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[aws.ToString(a.Name)] = aws.ToString(a.Value)
	}
	return out
}

// mapError folds pool API errors into the domain sentinels so the transport
// layer can derive status codes without knowing about Cognito.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var (
		usernameExists   *types.UsernameExistsException
		userNotFound     *types.UserNotFoundException
		notAuthorized    *types.NotAuthorizedException
		codeMismatch     *types.CodeMismatchException
		expiredCode      *types.ExpiredCodeException
		userNotConfirmed *types.UserNotConfirmedException
		invalidPassword  *types.InvalidPasswordException
		invalidParameter *types.InvalidParameterException
	)
	switch {
	case errors.As(err, &usernameExists):
		return fmt.Errorf("%s: %w", usernameExists.ErrorMessage(), domain.ErrConflict)
	case errors.As(err, &userNotFound):
		return fmt.Errorf("%s: %w", userNotFound.ErrorMessage(), domain.ErrNotFound)
	case errors.As(err, &notAuthorized):
		return fmt.Errorf("%s: %w", notAuthorized.ErrorMessage(), domain.ErrUnauthorized)
	case errors.As(err, &codeMismatch):
		return fmt.Errorf("%s: %w", codeMismatch.ErrorMessage(), domain.ErrUnauthorized)
	case errors.As(err, &expiredCode):
		return fmt.Errorf("%s: %w", expiredCode.ErrorMessage(), domain.ErrUnauthorized)
	case errors.As(err, &userNotConfirmed):
		return fmt.Errorf("%s: %w", userNotConfirmed.ErrorMessage(), domain.ErrForbidden)
	case errors.As(err, &invalidPassword):
		return fmt.Errorf("%s: %w", invalidPassword.ErrorMessage(), domain.ErrBadRequest)
	case errors.As(err, &invalidParameter):
		return fmt.Errorf("%s: %w", invalidParameter.ErrorMessage(), domain.ErrBadRequest)
	}
	return err
}

// StatusCode extracts the HTTP status of an unmapped pool error, or 0 when
// the error carries none.
func StatusCode(err error) int {
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
