package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"chloriseye/pipeline"
)

type Config struct {
	MongoURI    string
	MongoDB     string
	ArchiveURI  string
	OverpassURI string
	Collection  string
	JWTSecret   string
	Port        string

	Pipeline *pipeline.Config
}

func mustConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		MongoURI:    getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getenv("MONGO_DB", "chloriseye"),
		ArchiveURI:  getenv("ARCHIVE_URL", "http://127.0.0.1:8000"),
		OverpassURI: getenv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		Collection:  getenv("ARCHIVE_COLLECTION", "MOD09A1"),
		JWTSecret:   getenv("JWT_SECRET", "change_me"),
		Port:        getenv("PORT", "8080"),
		Pipeline:    mustPipelineConfig(),
	}

	return cfg
}

// mustPipelineConfig reads the analysis parameters. All of them are
// required; a missing or malformed one stops the service before any run
// can start.
func mustPipelineConfig() *pipeline.Config {
	bands, err := parseBandMap(mustenv("PIPELINE_BANDS"))
	if err != nil {
		log.Fatal("PIPELINE_BANDS: ", err)
	}

	bits, err := parseBits(mustenv("PIPELINE_QA_BITS"))
	if err != nil {
		log.Fatal("PIPELINE_QA_BITS: ", err)
	}

	threshold, err := strconv.ParseFloat(mustenv("PIPELINE_NDVI_THRESHOLD"), 64)
	if err != nil {
		log.Fatal("PIPELINE_NDVI_THRESHOLD: ", err)
	}

	start, err := parseDate(mustenv("PIPELINE_START_DATE"))
	if err != nil {
		log.Fatal("PIPELINE_START_DATE: ", err)
	}

	end, err := parseDate(mustenv("PIPELINE_END_DATE"))
	if err != nil {
		log.Fatal("PIPELINE_END_DATE: ", err)
	}

	order, err := strconv.Atoi(mustenv("PIPELINE_ORDER"))
	if err != nil {
		log.Fatal("PIPELINE_ORDER: ", err)
	}

	detrended, err := strconv.ParseBool(mustenv("PIPELINE_FIT_DETRENDED"))
	if err != nil {
		log.Fatal("PIPELINE_FIT_DETRENDED: ", err)
	}

	cfg := &pipeline.Config{
		BandMap:       bands,
		QABand:        mustenv("PIPELINE_QA_BAND"),
		QABits:        bits,
		NDVIThreshold: threshold,
		StartDate:     start,
		EndDate:       end,
		Order:         order,
		Dependent:     mustenv("PIPELINE_DEPENDENT"),
		FitDetrended:  detrended,
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("pipeline config: ", err)
	}

	return cfg
}

// parseBandMap reads "src=dst,src=dst" rename pairs.
func parseBandMap(s string) (map[string]string, error) {
	out := make(map[string]string)

	for _, pair := range strings.Split(s, ",") {
		src, dst, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || src == "" || dst == "" {
			return nil, fmt.Errorf("bad band pair %q", pair)
		}

		out[src] = dst
	}

	return out, nil
}

// parseBits reads a comma-separated list of bit positions.
func parseBits(s string) ([]uint, error) {
	var out []uint

	for _, part := range strings.Split(s, ",") {
		b, err := strconv.ParseUint(strings.TrimSpace(part), 10, 5)
		if err != nil {
			return nil, fmt.Errorf("bad bit position %q", part)
		}

		out = append(out, uint(b))
	}

	return out, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatal("missing required env ", k)
	}

	return v
}
