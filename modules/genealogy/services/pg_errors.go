package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/branch"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/bridgelink"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/person"
)

func mapPgError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	switch {
	case errors.Is(err, person.ErrNotFound):
		return newServiceError(http.StatusNotFound, "GENEALOGY_PERSON_NOT_FOUND", "person not found", err)
	case errors.Is(err, branch.ErrNotFound):
		return newServiceError(http.StatusNotFound, "GENEALOGY_BRANCH_NOT_FOUND", "branch not found", err)
	case errors.Is(err, bridgelink.ErrNotFound):
		return newServiceError(http.StatusNotFound, "GENEALOGY_LINK_NOT_FOUND", "bridge link not found", err)
	case errors.Is(err, pgx.ErrNoRows):
		return newServiceError(http.StatusNotFound, "GENEALOGY_NOT_FOUND", "not found", err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		recordWriteConflict("unique")
		switch pgErr.ConstraintName {
		case "branch_person_links_primary_per_pair":
			// Second line of defense behind the advisory-lock path.
			return newServiceError(http.StatusConflict, "GENEALOGY_PRIMARY_CONFLICT", "branch pair already has a primary bridge", err)
		case "branch_person_links_active_per_target":
			return newServiceError(http.StatusConflict, "GENEALOGY_LINK_CONFLICT", "an active link already exists for this person and branch", err)
		default:
			return newServiceError(http.StatusConflict, "GENEALOGY_CONFLICT", "unique constraint violated", err)
		}
	case "23503": // foreign_key_violation
		recordWriteConflict("foreign_key")
		return newServiceError(http.StatusUnprocessableEntity, "GENEALOGY_REFERENCE_NOT_FOUND", "foreign key violation", err)
	default:
		return newServiceError(http.StatusInternalServerError, "GENEALOGY_INTERNAL", fmt.Sprintf("database error (%s)", pgErr.Code), err)
	}
}
