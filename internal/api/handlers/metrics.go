package handlers

import (
	"fmt"
	"net/http"
)

type MetricsHandler struct{}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "# HELP partnerhub_up Is the server up\n")
	fmt.Fprintf(w, "# TYPE partnerhub_up gauge\n")
	fmt.Fprintf(w, "partnerhub_up 1\n")
}
