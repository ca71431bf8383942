package auth

import (
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// Owned is anything with an owner of record.
type Owned interface {
	OwnerID() int64
}

// AuthorizeOwner returns common.ErrForbidden unless caller owns resource.
// Callers load the resource first, so a missing one is reported as not
// found before ownership is considered. Owner id 0 never matches: ids start
// at 1 and nil records report 0.
func AuthorizeOwner(resource Owned, caller *models.User) error {
	if resource == nil || caller == nil {
		return common.ErrForbidden
	}
	if owner := resource.OwnerID(); owner == 0 || owner != caller.ID {
		return common.ErrForbidden
	}
	return nil
}
