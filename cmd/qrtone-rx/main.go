// Command qrtone-rx demodulates an acoustic waveform, either read from
// a WAV file or captured live from an audio input device, and prints
// the decoded payload.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	"github.com/FihlaTV/qrtone/cmd/internal/wavio"
	"github.com/FihlaTV/qrtone/config"
	"github.com/FihlaTV/qrtone/qrtone"
)

func main() {
	var (
		configFile = pflag.StringP("config", "c", "", "Path to a YAML config file overriding the built-in defaults.")
		inputFile  = pflag.StringP("input", "i", "", "WAV file to decode (ignored with --live).")
		live       = pflag.BoolP("live", "l", false, "Capture live audio from the default input device instead of reading a file.")
		inputDev   = pflag.String("input-device", "", "Name of the input device to use with --live (default device if empty).")
		sampleRate = pflag.Float64P("sample-rate", "r", 0, "Sample rate in Hz for --live capture (0: use config default).")
		asText     = pflag.Bool("text", true, "Print the decoded payload as text rather than hex.")
		verbose    = pflag.BoolP("verbose", "v", false, "Enable debug logging, including per-window gate SPL readings.")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: qrtone-rx [flags] (--input <file> | --live)\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true})
	if *verbose {
		logger.SetLevel(charmlog.DebugLevel)
	}

	if !*live && *inputFile == "" {
		logger.Error("one of --input or --live is required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			logger.Fatal("loading config", "err", err)
		}
		cfg = loaded
	}
	if *sampleRate > 0 {
		cfg.SampleRate = *sampleRate
	}
	if *inputDev != "" {
		cfg.InputDevice = *inputDev
	}

	var samples []float32
	if *live {
		captured, err := captureLive(cfg.SampleRate, cfg.InputDevice, logger)
		if err != nil {
			logger.Fatal("live capture failed", "err", err)
		}
		samples = captured
	} else {
		f, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("opening input file", "err", err)
		}
		defer f.Close()

		format, decoded, err := wavio.Read(f)
		if err != nil {
			logger.Fatal("reading wav file", "err", err)
		}
		cfg.SampleRate = float64(format.SampleRate)
		samples = decoded
	}

	rx := qrtone.NewReceiver(cfg.SampleRate)
	if *verbose {
		rx.LevelObserver = func(location int, splFirst, splSecond float64) {
			logger.Debug("gate level", "location", location, "spl1", splFirst, "spl2", splSecond)
		}
	}

	found := false
	windowSize := rx.MaximumLength()
	for cursor := 0; cursor < len(samples); {
		n := windowSize
		if cursor+n > len(samples) {
			n = len(samples) - cursor
		}
		if rx.PushSamples(samples[cursor : cursor+n]) {
			found = true
			break
		}
		cursor += n
		windowSize = rx.MaximumLength()
		if windowSize <= 0 {
			windowSize = 1
		}
	}

	if !found {
		logger.Error("no payload decoded")
		os.Exit(1)
	}

	payload := rx.Payload()
	logger.Info("payload decoded", "bytes", len(payload), "fixed_errors", rx.FixedErrors())
	if *asText {
		fmt.Println(string(payload))
	} else {
		fmt.Println(hex.EncodeToString(payload))
	}
}

func captureLive(sampleRate float64, deviceName string, logger *charmlog.Logger) ([]float32, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	device, err := resolveInputDevice(deviceName)
	if err != nil {
		return nil, err
	}

	const framesPerBuffer = 1024
	const maxSeconds = 30
	logger.Info("capturing live", "device", device.Name, "max_seconds", maxSeconds)

	buf := make([]float32, framesPerBuffer)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: framesPerBuffer,
	}
	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, fmt.Errorf("opening input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting input stream: %w", err)
	}
	defer stream.Stop()

	captured := make([]float32, 0, int(sampleRate*maxSeconds))
	for len(captured) < cap(captured) {
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
		captured = append(captured, buf...)
	}
	return captured, nil
}

func resolveInputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing audio devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no input device named %q", name)
}
