package api

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/vsnandy/sportsproxy/config"
	"github.com/vsnandy/sportsproxy/directory"
	"github.com/vsnandy/sportsproxy/ncaa"
	"github.com/vsnandy/sportsproxy/pickpoolr"
	"github.com/vsnandy/sportsproxy/store"
	"github.com/vsnandy/sportsproxy/upstream"
)

// FromConfig builds the production Deps on top of sess.
func FromConfig(cfg config.Config, sess *session.Session) Deps {
	db := dynamodb.New(sess)
	cognito := cognitoidentityprovider.New(sess)

	return Deps{
		AllowOrigin: cfg.AllowedOrigins,
		Getter:      upstream.New(cfg.HTTPTimeout, cfg.UpstreamRPS, cfg.UpstreamBurst),
		Bets:        &pickpoolr.DynamoBets{Table: store.NewTable(db, cfg.BetsTable, pickpoolr.PartitionKey)},
		Draft:       &ncaa.DynamoDraft{Table: store.NewTable(db, cfg.DraftTable, ncaa.DraftPartitionKey)},
		Members:     directory.New(cognito, cfg.UserPoolID),
	}
}
