package caja

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"ControlCajaSaas/api"
	"ControlCajaSaas/api/caja/bancos"
	"ControlCajaSaas/api/caja/carga"
	"ControlCajaSaas/api/caja/dataset"
	"ControlCajaSaas/api/caja/filterstate"
	"ControlCajaSaas/api/caja/reportes"
	"ControlCajaSaas/api/caja/vistas"
)

func StartCajaService(store *dataset.Store, filters *filterstate.Store) {
	mux := http.NewServeMux()
	mux.HandleFunc("/caja/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Caja Service is active"))
	})

	// Shared pgx pool for upload staging and saved views. Without DB env the
	// service still runs; staging is skipped and saved views are disabled.
	var pgxPool *pgxpool.Pool
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if user != "" && pass != "" && host != "" && port != "" && name != "" {
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, name)
		pool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			log.Fatalf("failed to connect to pgxpool DB: %v", err)
		}
		pgxPool = pool
	}

	mux.HandleFunc("/caja/upload", carga.UploadControlCaja(pgxPool, store, filters))
	mux.HandleFunc("/caja/upload-comparacion", carga.UploadComparacion(pgxPool, store, filters))
	mux.HandleFunc("/caja/bancos", bancos.ResumenPorHojas())

	mux.HandleFunc("/caja/dashboard", reportes.Dashboard(store, filters))
	mux.HandleFunc("/caja/dashboard-comparacion", reportes.DashboardComparacion(store, filters))
	mux.HandleFunc("/caja/filtros/aplicar", reportes.AplicarFiltros(store, filters))
	mux.HandleFunc("/caja/filtros/reset", reportes.ResetFiltros(filters))
	mux.HandleFunc("/caja/export/bundle", reportes.ExportarBundle(store, filters))
	mux.HandleFunc("/caja/export/pdf", reportes.ExportarPDF(store, filters))
	mux.HandleFunc("/caja/admin/limpiar", reportes.LimpiarDatos(store, filters))

	mux.HandleFunc("/caja/vistas/guardar", vistas.GuardarVista(pgxPool))
	mux.HandleFunc("/caja/vistas/aplicar", vistas.AplicarVista(pgxPool, filters))
	mux.HandleFunc("GET /caja/vistas/{id}", vistas.ObtenerVista(pgxPool))

	log.Println("Caja Service started on :6143")
	err := http.ListenAndServe(":6143", api.SessionValidationMiddleware(mux))
	if err != nil {
		log.Fatalf("Caja Service failed: %v", err)
	}
}
