// Package directory looks up league membership in the Cognito user pool. Each
// league is a Cognito group and its members are the group's users.
package directory

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider/cognitoidentityprovideriface"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// PageSize is the largest page ListUsersInGroup accepts.
const PageSize = 60

// MaxPages bounds NextToken pagination.
const MaxPages = 50

// Member is one user of a group.
type Member struct {
	Username   string            `json:"username"`
	Status     string            `json:"status"`
	Enabled    bool              `json:"enabled"`
	Attributes map[string]string `json:"attributes"`
}

// Directory lists group members from one user pool.
type Directory struct {
	UserPoolID string

	svc cognitoidentityprovideriface.CognitoIdentityProviderAPI
}

// New returns a Directory for userPoolID.
func New(svc cognitoidentityprovideriface.CognitoIdentityProviderAPI, userPoolID string) *Directory {
	return &Directory{UserPoolID: userPoolID, svc: svc}
}

// Members returns every user in group, following NextToken until exhausted.
func (d *Directory) Members(ctx context.Context, group string) ([]Member, error) {
	if d.UserPoolID == "" {
		return nil, errors.New("no user pool configured")
	}

	log := zerolog.Ctx(ctx)
	log.Info().Str("userPoolId", d.UserPoolID).Str("group", group).Msg("listing group members")

	input := &cognitoidentityprovider.ListUsersInGroupInput{
		UserPoolId: aws.String(d.UserPoolID),
		GroupName:  aws.String(group),
		Limit:      aws.Int64(PageSize),
	}

	members := []Member{}
	for page := 0; ; page++ {
		if page == MaxPages {
			return nil, errors.Errorf("group %s exceeded %d pages", group, MaxPages)
		}

		output, err := d.svc.ListUsersInGroupWithContext(ctx, input)
		if err != nil {
			return nil, errors.Wrapf(err, "failed listing users in group %s", group)
		}

		for _, user := range output.Users {
			members = append(members, toMember(user))
		}

		if aws.StringValue(output.NextToken) == "" {
			break
		}
		input.NextToken = output.NextToken
	}

	log.Info().Str("group", group).Int("members", len(members)).Msg("listed group members")

	return members, nil
}

func toMember(user *cognitoidentityprovider.UserType) Member {
	attrs := make(map[string]string, len(user.Attributes))
	for _, attr := range user.Attributes {
		attrs[aws.StringValue(attr.Name)] = aws.StringValue(attr.Value)
	}

	return Member{
		Username:   aws.StringValue(user.Username),
		Status:     aws.StringValue(user.UserStatus),
		Enabled:    aws.BoolValue(user.Enabled),
		Attributes: attrs,
	}
}
