package tracker

import (
	"context"

	"github.com/bfp-echague/firetrack/core/access"
	"github.com/bfp-echague/firetrack/core/logger"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@gmail.com"
	defaultAdminPassword = "adminadmin123"
)

// echagueBarangays is the default barangay list of the municipality of
// Echague, Isabela.
var echagueBarangays = []string{
	"Cabugao", "San Fabian", "Silauan Norte", "Silauan Sur", "Taggappan",
	"Soyung", "Angoluan", "Annafunan", "Arabiat", "Aromin", "Babaran",
	"Bacradal", "Benguet", "Buneg", "Busilelao", "Caniguing", "Carulay",
	"Castillo", "Dammang East", "Dammang West", "Diasan", "Dicaraoyan",
	"Dugayong", "Fugu", "Garit Norte", "Garit Sur", "Gucab", "Gumbaoan",
	"Ipil", "Libertad", "Mabbayad", "Mabuhay", "Madadamian", "Magleticia",
	"Malibago", "Maligaya", "Malitao", "Narra", "Nilumisu", "Pag-asa",
	"Pangal Norte", "Pangal Sur", "Rumang-ay", "Salay", "Salvacion",
	"San Antonio Ugad", "San Antonio Minit", "San Carlos", "San Felipe",
	"San Juan", "San Manuel", "San Miguel", "San Salvador", "Sta. Ana",
	"Santa Cruz", "Sta. Maria", "Santa Monica", "Santo Domingo",
	"Sinabbaran", "Tuguegarao", "Villa Campo", "Villa Fermin", "Villa Rey",
	"Villa Victoria",
}

var defaultCategories = []CategoryInput{
	{Name: "Low", Severity: 0},
	{Name: "Moderate", Severity: 1},
	{Name: "High", Severity: 2},
	{Name: "Severe", Severity: 3},
}

// EnsureAdmin creates the default admin account if no admin exists.
func EnsureAdmin(ctx context.Context, store Store) error {
	count, err := store.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count != 0 {
		return nil
	}

	rlog := logger.FromContext(ctx)
	rlog.Error("no admin accounts found, creating a new one")

	passwordHash, err := hashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}
	_, err = store.CreateUser(ctx, UserInput{
		Username:  defaultAdminUsername,
		Email:     defaultAdminEmail,
		Privilege: access.PrivilegeAdmin,
	}, passwordHash)
	if err != nil {
		return err
	}

	rlog.Warningf("created new admin account, username %q, password %q. "+
		"PLEASE CHANGE THE PASSWORD IMMEDIATELY.", defaultAdminUsername, defaultAdminPassword)
	return nil
}

// EnsureBarangays loads the default barangay list if none exist yet.
func EnsureBarangays(ctx context.Context, store Store) error {
	count, err := store.CountBarangays(ctx)
	if err != nil {
		return err
	}
	if count != 0 {
		return nil
	}

	logger.FromContext(ctx).Error("no barangays found, populating default Echague barangays")

	inputs := make([]BarangayInput, len(echagueBarangays))
	for i, name := range echagueBarangays {
		inputs[i] = BarangayInput{Name: name}
	}
	if _, err := store.CreateBarangays(ctx, inputs); err != nil {
		return err
	}

	logger.FromContext(ctx).Warningf("populated %d barangays", len(echagueBarangays))
	return nil
}

// EnsureCategories loads the default severity categories if none exist yet.
func EnsureCategories(ctx context.Context, store Store) error {
	count, err := store.CountCategories(ctx)
	if err != nil {
		return err
	}
	if count != 0 {
		return nil
	}

	logger.FromContext(ctx).Error("no categories found, populating defaults")

	for _, input := range defaultCategories {
		if _, err := store.CreateCategory(ctx, input); err != nil {
			return err
		}
	}
	return nil
}

// Seed runs all startup data checks in order.
func Seed(ctx context.Context, store Store) error {
	if err := EnsureAdmin(ctx, store); err != nil {
		return err
	}
	if err := EnsureBarangays(ctx, store); err != nil {
		return err
	}
	return EnsureCategories(ctx, store)
}
