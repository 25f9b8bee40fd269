package tracker

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/bfp-echague/firetrack/core/access"
	"github.com/bfp-echague/firetrack/core/rest"
)

const bcryptCost = 12

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UserPermissions is the permission set for the user resource: everyone
// logged in can read and manage their own account, only admins create
// accounts.
func UserPermissions() rest.PermissionSet {
	return rest.PermissionSet{
		Get:     access.PrivilegeBasic,
		GetMany: access.PrivilegeBasic,
		Post:    access.PrivilegeAdmin,
		Patch:   access.PrivilegeBasic,
		Delete:  access.PrivilegeBasic,
	}
}

// UserTable builds the controller table for the user resource. The
// non-admin record ownership rules live in the patch and delete closures:
// users edit only themselves, never their own privilege, and the last
// admin account is undeletable.
func UserTable(store Store, sessions *access.Manager) *rest.ControllerTable {
	return &rest.ControllerTable{
		QueryParams: []rest.QueryParam{rest.SearchQueryParam()},

		Get: rest.GeneralGet(func(r *http.Request) (interface{}, error) {
			return store.User(r.Context(), rest.PathID(r))
		}),

		GetMany: rest.GeneralGetMany(func(r *http.Request, q rest.Query) (interface{}, error) {
			search, _ := q.String("search")
			return store.Users(r.Context(), search)
		}),

		Post: rest.GeneralPost(userUpsert, func(r *http.Request, body []byte) (interface{}, error) {
			input, err := decode[UserInput](body)
			if err != nil {
				return nil, err
			}
			passwordHash, err := hashPassword(input.Password)
			if err != nil {
				return nil, err
			}
			return store.CreateUser(r.Context(), *input, passwordHash)
		}),

		Patch: rest.GeneralPatch(userUpsert, func(r *http.Request, body []byte) (interface{}, error) {
			ctx := r.Context()
			id := rest.PathID(r)
			auth := access.AuthorizationFromContext(ctx)

			if auth == nil || auth.UserID != id {
				return nil, rest.NewError("editingDifferentUser",
					"You are editing a different user than who you are logged into.")
			}

			patch, err := decode[UserPatch](body)
			if err != nil {
				return nil, err
			}

			current, err := store.User(ctx, id)
			if err != nil {
				return nil, err
			}
			if current == nil {
				return nil, rest.ErrNotFoundID
			}

			if patch.Privilege != nil && *patch.Privilege != current.Privilege {
				return nil, rest.NewError("cannotUpdatePrivilege", "You cannot update your own privilege.")
			}
			patch.Privilege = nil

			passwordChanged := false
			passwordHash := ""
			if patch.Password != nil {
				passwordChanged = !checkPassword(current.PasswordHash, *patch.Password)
				if passwordHash, err = hashPassword(*patch.Password); err != nil {
					return nil, err
				}
			}

			updated, err := store.UpdateUser(ctx, id, *patch, passwordHash)
			if err != nil {
				return nil, err
			}

			// a changed password invalidates every other session
			if passwordChanged {
				token, err := sessions.TokenFromRequest(r)
				if err != nil {
					return nil, err
				}
				if err := sessions.LogoutAll(ctx, id, token); err != nil {
					return nil, err
				}
			}
			return updated, nil
		}),

		Delete: rest.GeneralDelete(func(r *http.Request) (interface{}, error) {
			ctx := r.Context()
			id := rest.PathID(r)
			auth := access.AuthorizationFromContext(ctx)

			toDelete, err := store.User(ctx, id)
			if err != nil {
				return nil, err
			}
			if toDelete == nil {
				return nil, nil
			}

			if !auth.HasPrivilege(access.PrivilegeAdmin) && toDelete.ID != auth.UserID {
				return nil, rest.NewError("deletingOtherAccount", "You can't delete another user.")
			}

			if toDelete.Privilege == access.PrivilegeAdmin {
				count, err := store.CountAdmins(ctx)
				if err != nil {
					return nil, err
				}
				if count == 1 {
					return nil, rest.NewError("deletingLastAdminAccount",
						"You tried to delete the last admin account. You cannot do this.")
				}
			}

			return store.DeleteUser(ctx, id)
		}),
	}
}
