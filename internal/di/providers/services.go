package providers

import (
	"github.com/samber/do/v2"

	"github.com/cookbookapp/cookbook-server/internal/auth"
	"github.com/cookbookapp/cookbook-server/internal/logger"
	"github.com/cookbookapp/cookbook-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideRecipeService provides the recipe service.
func ProvideRecipeService(i do.Injector) (*service.RecipeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecipeService(storeHandle.Store, log.Logger), nil
}

// ProvideLabelService provides the tag and ingredient listing service.
func ProvideLabelService(i do.Injector) (*service.LabelService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLabelService(storeHandle.Store, log.Logger), nil
}
