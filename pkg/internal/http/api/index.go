package api

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"github.com/gofiber/fiber/v2"
)

type handlers struct {
	deps *exts.Deps
}

func MapControllers(app *fiber.App, baseURL string, deps *exts.Deps) {
	h := &handlers{deps: deps}

	api := app.Group(baseURL).Name("API")
	{
		categories := api.Group("/categories").Name("Categories API")
		{
			categories.Get("/", listCategories)
			categories.Get("/tree", getCategoryTree)
			categories.Get("/slug/:slug", getCategoryBySlug)
			categories.Get("/:categoryId", getCategory)
			categories.Post("/", createCategory)
			categories.Patch("/:categoryId", editCategory)
			categories.Delete("/:categoryId", deleteCategory)
		}

		tags := api.Group("/tags").Name("Tags API")
		{
			tags.Get("/", listTags)
			tags.Get("/slug/:slug", getTagBySlug)
			tags.Get("/:tagId", getTag)
			tags.Post("/", createTag)
			tags.Patch("/:tagId", editTag)
			tags.Delete("/:tagId", deleteTag)
		}

		posts := api.Group("/posts").Name("Posts API")
		{
			posts.Get("/", listPost)
			posts.Get("/featured", listFeaturedPost)
			posts.Get("/check-slug", checkPostSlug)
			posts.Get("/slug/:slug", getPostBySlug)
			posts.Get("/:postId", getPost)
			posts.Get("/:postId/related", listRelatedPost)
			posts.Post("/", h.createPost)
			posts.Patch("/:postId", h.editPost)
			posts.Delete("/:postId", deletePost)
			posts.Post("/:postId/like", likePost)
		}

		comments := api.Group("/comments").Name("Comments API")
		{
			comments.Get("/", listComments)
			comments.Get("/me", h.listMyComments)
			comments.Get("/post/:postId", listPostComments)
			comments.Get("/:commentId", getComment)
			comments.Post("/", h.createComment)
			comments.Patch("/:commentId", h.editComment)
			comments.Delete("/:commentId", h.deleteComment)
		}

		banners := api.Group("/banners").Name("Banners API")
		{
			banners.Get("/", listBanners)
			banners.Get("/:bannerId", getBanner)
			banners.Post("/", createBanner)
			banners.Patch("/:bannerId", editBanner)
			banners.Delete("/:bannerId", deleteBanner)
		}

		users := api.Group("/users").Name("Users API")
		{
			users.Get("/", listUsers)
			users.Get("/:userId", getUser)
			users.Get("/:userId/activities", listUserActivities)
			users.Post("/", createUser)
			users.Patch("/:userId", editUser)
			users.Delete("/:userId", deleteUser)
		}

		auth := api.Group("/auth").Name("Auth API")
		{
			auth.Post("/login", h.login)
			auth.Post("/refresh", h.refreshSession)
			auth.Post("/logout", logout)
			auth.Get("/me", getMe)
			auth.Post("/password", changePassword)
		}

		uploads := api.Group("/uploads").Name("Uploads API")
		{
			uploads.Post("/:profile", h.createUpload)
			uploads.Delete("/*", h.deleteUpload)
		}
	}
}
