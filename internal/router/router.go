package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram-v2/backend/internal/api"
	"github.com/pageza/foodgram-v2/backend/internal/middleware"
)

// SetupRouter configures the application routes. Every toggle endpoint is
// statically bound to one relationship kind.
func SetupRouter(
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	tagHandler *api.TagHandler,
	ingredientHandler *api.IngredientHandler,
	subscriptionHandler *api.SubscriptionHandler,
	shoppingCartHandler *api.ShoppingCartHandler,
	validator middleware.TokenValidator,
	allowedOrigins []string,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Reference data, public
	tags := v1.Group("/tags")
	{
		tags.GET("", tagHandler.ListTags)
		tags.GET("/:id", tagHandler.GetTag)
	}
	ingredients := v1.Group("/ingredients")
	{
		ingredients.GET("", ingredientHandler.ListIngredients)
		ingredients.GET("/:id", ingredientHandler.GetIngredient)
	}

	// Public reads resolve the viewer when a token is present so the
	// is_favorited / is_in_shopping_cart / is_subscribed flags are filled.
	optional := v1.Group("")
	optional.Use(middleware.OptionalAuthMiddleware(validator))
	{
		optional.GET("/recipes", recipeHandler.ListRecipes)
		optional.GET("/recipes/:id", recipeHandler.GetRecipe)
		optional.GET("/users", authHandler.ListUsers)
		optional.GET("/users/:id", authHandler.GetUser)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		protected.GET("/profile", authHandler.GetProfile)

		recipes := protected.Group("/recipes")
		{
			recipes.POST("", recipeHandler.CreateRecipe)
			recipes.PATCH("/:id", recipeHandler.UpdateRecipe)
			recipes.DELETE("/:id", recipeHandler.DeleteRecipe)
			recipes.POST("/:id/favorite", recipeHandler.FavoriteRecipe)
			recipes.DELETE("/:id/favorite", recipeHandler.UnfavoriteRecipe)
			recipes.POST("/:id/shopping_cart", recipeHandler.AddToShoppingCart)
			recipes.DELETE("/:id/shopping_cart", recipeHandler.RemoveFromShoppingCart)
			recipes.GET("/download_shopping_cart", shoppingCartHandler.DownloadShoppingCart)
		}

		users := protected.Group("/users")
		{
			users.GET("/subscriptions", subscriptionHandler.ListSubscriptions)
			users.POST("/:id/subscribe", subscriptionHandler.Subscribe)
			users.DELETE("/:id/subscribe", subscriptionHandler.Unsubscribe)
		}
	}

	return router
}
