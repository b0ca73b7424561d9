package repository

import "astroseva/internal/domain"

// Models lists every table owned by this package, in migration order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.UserRole{},
		&domain.Profile{},
		&domain.FamilyProfile{},
		&domain.RefreshToken{},
		&bookingModel{},
	}
}
