package identity

import (
	"context"
	"fmt"
	"strings"

	"countyconnect/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// CognitoAPI is the slice of the Cognito client the directory needs.
type CognitoAPI interface {
	ListUsers(ctx context.Context, params *cognito.ListUsersInput, optFns ...func(*cognito.Options)) (*cognito.ListUsersOutput, error)
}

// Cognito resolves profile details for users whose local row is missing a
// name or email, e.g. when snapshotting a claim request.
type Cognito struct {
	client     CognitoAPI
	userPoolID string
}

func NewCognito(client CognitoAPI, userPoolID string) *Cognito {
	return &Cognito{client: client, userPoolID: userPoolID}
}

func (c *Cognito) Profile(ctx context.Context, userID string) (*types.Profile, error) {

	out, err := c.client.ListUsers(ctx, &cognito.ListUsersInput{
		UserPoolId: aws.String(c.userPoolID),
		Filter:     aws.String(fmt.Sprintf("sub = %q", userID)),
		Limit:      aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up cognito user %s: %w", userID, err)
	}

	if len(out.Users) == 0 {
		return nil, types.ErrUserNotFound
	}

	return profileFromAttributes(userID, out.Users[0].Attributes), nil
}

func profileFromAttributes(userID string, attrs []cognitotypes.AttributeType) *types.Profile {
	profile := &types.Profile{UserID: userID}

	var given, family string
	for _, attr := range attrs {
		value := strings.TrimSpace(aws.ToString(attr.Value))
		switch aws.ToString(attr.Name) {
		case "email":
			profile.Email = value
		case "name":
			profile.Name = value
		case "given_name":
			given = value
		case "family_name":
			family = value
		}
	}

	if profile.Name == "" {
		profile.Name = strings.TrimSpace(given + " " + family)
	}

	return profile
}
