package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/unixpickle/essentials"
	"gopkg.in/yaml.v3"

	"fabrictensor/internal/models"
	"fabrictensor/pkg/acf"
	"fabrictensor/pkg/config"
	"fabrictensor/pkg/envelope"
	"fabrictensor/pkg/fabric"
	"fabrictensor/pkg/phantom"
	"fabrictensor/pkg/sampling"
	"fabrictensor/pkg/visualization"
	"fabrictensor/pkg/zoom"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "fabrictensor.yaml", "YAML configuration file (defaults are used if missing)")
	initConfig := flag.Bool("init-config", false, "Write the default configuration to -config and exit")
	input := flag.String("input", "", "Headerless little-endian raw volume")
	shapeFlag := flag.String("shape", "", "Raw volume shape as depth,rows,cols")
	dtypeFlag := flag.String("dtype", "uint8", "Raw voxel type: uint8, int16, uint16, float32, float64")
	phantomRadii := flag.String("phantom", "", "Use a centred solid ellipsoid with radii x,y,z instead of -input")
	phantomShape := flag.String("phantom-shape", "64,64,64", "Phantom volume shape as depth,rows,cols")
	mode := flag.String("mode", "single", "Sampling mode: single, points or grid")
	pointsPath := flag.String("points", "", "Text file of x y z centres for -mode points")
	outputPath := flag.String("output", "fabric.yaml", "Output YAML report")
	previewDir := flag.String("acf-preview", "", "Directory for ACF central plane previews")

	// Overrides of configuration values
	roiSize := flag.Int("roi", 0, "ROI size in voxels")
	roiSpacing := flag.Int("spacing", 0, "Grid spacing in voxels")
	threshold := flag.Float64("threshold", 0, "Normalised ACF threshold (0-1)")
	method := flag.String("method", "", "Envelope method: marching_cubes or marching_cubes_search")
	zoomEnabled := flag.Bool("zoom", false, "Zoom the ACF centre before fitting")
	zoomSize := flag.Int("zoom-size", 0, "Edge of the zoomed ACF crop")
	zoomFactor := flag.Float64("zoom-factor", 0, "ACF zoom factor")
	numCores := flag.Int("cores", 0, "Number of samples processed concurrently")
	abort := flag.Bool("abort-on-failure", false, "Abort the batch at the first failing sample")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Explicitly set flags take precedence over the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "roi":
			cfg.Sampling.ROISize = *roiSize
		case "spacing":
			cfg.Sampling.ROISpacing = *roiSpacing
		case "threshold":
			cfg.Envelope.Threshold = *threshold
		case "method":
			cfg.Envelope.Method = *method
		case "zoom":
			cfg.Zoom.Enabled = *zoomEnabled
		case "zoom-size":
			cfg.Zoom.Size = *zoomSize
		case "zoom-factor":
			cfg.Zoom.Factor = *zoomFactor
		case "cores":
			cfg.Sampling.NumCores = *numCores
		case "abort-on-failure":
			cfg.Sampling.AbortOnFitFailure = *abort
		case "acf-preview":
			cfg.Output.PreviewDir = *previewDir
		}
	})

	params, err := cfg.Params()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Output.Verbose {
		params.Progress = func(completed, total int, message string) {
			fmt.Printf("\rProcessing samples: %.1f%% complete", 100*float64(completed)/float64(total))
		}
	}

	volume, source, err := loadVolume(*input, *shapeFlag, *dtypeFlag, *phantomRadii, *phantomShape)
	if err != nil {
		log.Fatalf("Failed to load volume: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("FABRIC TENSOR ESTIMATION FROM THE VOLUME AUTOCORRELATION")
	fmt.Println("================================")
	fmt.Printf("Volume: %s, shape %v\n", source, volume.Shape())
	fmt.Printf("Mode: %s, ROI %d, spacing %d, threshold %.2f, method %s, zoom %v\n",
		*mode, params.ROISize, params.ROISpacing, params.Threshold, params.Method, params.Zoom.Enabled)

	rep := report{
		Mode:      *mode,
		Source:    source,
		Shape:     volume.Shape(),
		ROISize:   params.ROISize,
		Threshold: params.Threshold,
		Method:    string(params.Method),
		Zoom:      params.Zoom.EffectiveFactor(),
	}

	startTime := time.Now()
	var results []sampling.Result

	switch *mode {
	case "single":
		res, err := sampling.SingleVolume(volume, params)
		if err != nil {
			log.Fatalf("Fabric analysis failed: %v", err)
		}
		results = []sampling.Result{res}

	case "points":
		centers, err := loadPoints(*pointsPath)
		if err != nil {
			log.Fatalf("Failed to read points: %v", err)
		}
		results, err = sampling.PointSet(volume, centers, params)
		if err != nil {
			log.Fatalf("Fabric analysis failed: %v", err)
		}

	case "grid":
		grid, err := sampling.GridScan(volume, params)
		if err != nil {
			log.Fatalf("Fabric analysis failed: %v", err)
		}
		results = grid.Results
		rep.Lattice = grid.Shape()
		rep.Spacing = params.ROISpacing

	default:
		log.Fatalf("Unknown mode %q (must be single, points or grid)", *mode)
	}
	processingTime := time.Since(startTime)

	samples := make([]fabric.Sample, len(results))
	for i, res := range results {
		samples[i] = res.Sample
		rep.Samples = append(rep.Samples, newSampleReport(res))
	}
	rep.Summary = fabric.Summarize(samples)

	data, err := yaml.Marshal(&rep)
	essentials.Must(err)
	essentials.Must(os.MkdirAll(filepath.Dir(*outputPath), 0755))
	essentials.Must(os.WriteFile(*outputPath, data, 0644))

	fmt.Printf("\nAnalysis completed in %.2f seconds!\n", processingTime.Seconds())
	fmt.Printf("Samples: %d, rejected or failed: %d\n", rep.Summary.Count, rep.Summary.Rejected)
	fmt.Printf("Mean DA: %.3f (std %.3f)\n", rep.Summary.MeanDA, rep.Summary.StdDA)
	fmt.Printf("Report saved to: %s\n", *outputPath)

	if cfg.Output.PreviewDir != "" && len(results) > 0 {
		paths, err := savePreview(volume, results[0].ROI, params.Zoom, cfg.Output.PreviewDir, cfg.Output.PreviewScale)
		if err != nil {
			log.Printf("Warning: Failed to save ACF preview: %v", err)
		} else {
			fmt.Println("\nACF previews saved to:")
			for _, p := range paths {
				fmt.Printf("- %s\n", p)
			}
		}
	}
}

// loadVolume reads the raw input or renders the phantom.
func loadVolume(input, shapeFlag, dtypeFlag, phantomRadii, phantomShape string) (models.Volume, string, error) {
	if phantomRadii != "" {
		radii, err := parseTriple(phantomRadii)
		if err != nil {
			return models.Volume{}, "", fmt.Errorf("phantom radii: %w", err)
		}
		shape, err := parseShape(phantomShape)
		if err != nil {
			return models.Volume{}, "", fmt.Errorf("phantom shape: %w", err)
		}
		center := models.ToXYZ(float64(shape[0])/2, float64(shape[1])/2, float64(shape[2])/2)
		v := phantom.Ellipsoid(shape, center, radii, phantom.Identity)
		return v, fmt.Sprintf("phantom ellipsoid radii %v", radii), nil
	}

	if input == "" {
		flag.Usage()
		os.Exit(1)
	}
	shape, err := parseShape(shapeFlag)
	if err != nil {
		return models.Volume{}, "", fmt.Errorf("shape: %w", err)
	}
	dt, err := models.ParseDataType(dtypeFlag)
	if err != nil {
		return models.Volume{}, "", err
	}
	v, err := models.LoadRaw(input, shape, dt)
	if err != nil {
		return models.Volume{}, "", err
	}
	return v, input, nil
}

// savePreview writes the central planes of the ACF of the given ROI, zoomed
// like the analysis when zoom is enabled.
func savePreview(v models.Volume, roi models.ROI, zp sampling.ZoomParams, dir string, scale int) ([]string, error) {
	crop, err := v.Crop(roi)
	if err != nil {
		return nil, err
	}
	field, err := acf.Autocorrelate(crop)
	if err != nil {
		return nil, err
	}
	if zp.Enabled {
		field, err = zoom.Center(field, zoom.Options{Size: zp.Size, Factor: zp.Factor})
		if err != nil {
			return nil, err
		}
	}
	if normalized, err := envelope.Normalize(field); err == nil {
		field = normalized
	}

	viewer, err := visualization.NewViewer(field)
	if err != nil {
		return nil, err
	}
	return viewer.SaveCentralPlanes(dir, "acf", scale)
}
