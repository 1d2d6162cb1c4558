package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	attendanceHandler := handlers.NewAttendanceHandler(s.deps.Ledger, s.deps.Now)
	peopleHandler := handlers.NewPeopleHandler(s.deps.Library, s.deps.Store)
	recognizeHandler := handlers.NewRecognizeHandler(s.deps.Session, s.deps.Now)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		// Attendance
		r.Get("/attendance", attendanceHandler.List)
		r.Get("/stats", attendanceHandler.Stats)
		r.Get("/report", attendanceHandler.Report)

		// Known faces
		r.Get("/people", peopleHandler.List)
		r.Post("/people/{name}/images", peopleHandler.Upload)

		// Recognition
		r.Post("/recognize", recognizeHandler.Recognize)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
	})
}
