package identity

import (
	"context"
	"errors"

	accountdomain "github.com/trash2cash/platform/internal/account/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrIdentityMismatch means an app token named a real user but carried card
// data that does not belong to them.
var ErrIdentityMismatch = errors.New("identity_mismatch")

type Params struct {
	fx.In

	Log      *zap.Logger
	Accounts accountdomain.Service
}

// Resolver turns scanned QR payloads into accounts.
type Resolver struct {
	log      *zap.Logger
	accounts accountdomain.Service
}

func NewResolver(p Params) *Resolver {
	return &Resolver{
		log:      p.Log.Named("identity.resolver"),
		accounts: p.Accounts,
	}
}

// Resolve authenticates a QR payload. Card numbers, bare or keyed alone,
// resolve by lookup; credentialed tokens must pass verification; app tokens
// must carry the card number stored on the account.
func (r *Resolver) Resolve(ctx context.Context, raw string) (accountdomain.User, error) {
	token, err := Parse(raw)
	if err != nil {
		return accountdomain.User{}, err
	}

	switch token.Kind {
	case KindPlainCNIC:
		return r.accounts.FindByCNIC(ctx, token.CNIC)

	case KindKeyed:
		return r.accounts.AuthenticateCNIC(ctx, token.CNIC, token.Password)

	case KindUser:
		user, err := r.accounts.GetByID(ctx, accountdomain.GetUserRequest{ID: token.UserID})
		if err != nil {
			if errors.Is(err, accountdomain.ErrInvalidID) {
				return accountdomain.User{}, ErrMalformedToken
			}
			return accountdomain.User{}, err
		}
		if token.CNIC != user.CNIC {
			r.log.Warn("qr token cnic mismatch", zap.String("user_id", user.ID.String()))
			return accountdomain.User{}, ErrIdentityMismatch
		}
		if token.Username != "" && token.Username != user.Username {
			// Usernames can change after a code is printed; the card number
			// match above already settles the identity.
			r.log.Warn("qr token username stale", zap.String("user_id", user.ID.String()))
		}
		return user, nil

	default:
		return accountdomain.User{}, ErrMalformedToken
	}
}

var Module = fx.Module("identity.resolver",
	fx.Provide(NewResolver),
)
