package computacion

import "github.com/go-chi/chi/v5"

// RegisterRoutes registra la raíz y las rutas de computacion en el router.
func RegisterRoutes(route chi.Router, handler *Handler) {
	route.Get("/", handler.Welcome)

	route.Route("/computacion", func(route chi.Router) {
		route.Get("/", handler.List)
		route.Post("/", handler.Create)
		route.Get("/nombre/{nombre}", handler.ByNombre)
		route.Get("/precio/{precio}", handler.ByPrecio)
		route.Get("/{id}", handler.GetByID)
		route.Put("/{id}", handler.Update)
		route.Patch("/{id}", handler.Patch)
		route.Delete("/{id}", handler.Delete)
	})
}
