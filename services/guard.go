package services

import (
	"fmt"

	"github.com/mymedicos/discuss-backend/errs"
)

// requireAuthor fails with Forbidden unless callerUID authored the entity.
// Callers check existence first so a missing entity reports NotFound.
func requireAuthor(entity, action, authorUID, callerUID string) error {
	if authorUID != callerUID {
		return errs.NewForbiddenError(fmt.Sprintf("you are not authorized to %s this %s", action, entity))
	}
	return nil
}
