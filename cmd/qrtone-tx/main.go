// Command qrtone-tx encodes a payload into an acoustic waveform, either
// writing it to a WAV file or playing it live through an audio output
// device.
package main

import (
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	"github.com/FihlaTV/qrtone/cmd/internal/wavio"
	"github.com/FihlaTV/qrtone/config"
	"github.com/FihlaTV/qrtone/internal/frame"
	"github.com/FihlaTV/qrtone/qrtone"
)

func main() {
	var (
		configFile  = pflag.StringP("config", "c", "", "Path to a YAML config file overriding the built-in defaults.")
		outputFile  = pflag.StringP("output", "o", "out.wav", "WAV file to write the synthesized waveform to.")
		live        = pflag.BoolP("live", "l", false, "Play the waveform live through the default audio output device instead of writing a file.")
		outputDev   = pflag.String("output-device", "", "Name of the output device to use with --live (default device if empty).")
		sampleRate  = pflag.Float64P("sample-rate", "r", 0, "Sample rate in Hz (0: use config default).")
		eccLevelStr = pflag.StringP("ecc", "e", "", "Error-correction level: low, medium, quality, high (empty: use config default).")
		noCRC       = pflag.Bool("no-crc", false, "Disable the CRC-16 payload trailer.")
		payloadStr  = pflag.StringP("payload", "p", "", "Payload text to transmit.")
		verbose     = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: qrtone-tx [flags] -p <payload>\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true})
	if *verbose {
		logger.SetLevel(charmlog.DebugLevel)
	}

	if *payloadStr == "" {
		logger.Error("missing required --payload")
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
	if *eccLevelStr != "" {
		level, err := parseLevel(*eccLevelStr)
		if err != nil {
			logger.Fatal("parsing --ecc", "err", err)
		}
		cfg.ECCLevel = level
	}
	if *noCRC {
		cfg.CRC = false
	}
	if *outputDev != "" {
		cfg.OutputDevice = *outputDev
	}

	tx := qrtone.NewTransmitter(cfg.SampleRate)
	totalSamples, err := tx.SetPayloadExt([]byte(*payloadStr), cfg.ECCLevel, cfg.CRC)
	if err != nil {
		logger.Fatal("encoding payload", "err", err)
	}
	logger.Info("payload encoded", "bytes", len(*payloadStr), "samples", totalSamples, "seconds", float64(totalSamples)/cfg.SampleRate)

	buf := make([]float32, totalSamples)
	tx.GetSamples(buf, 0, cfg.PowerPeak)

	if *live {
		if err := playLive(cfg.SampleRate, cfg.OutputDevice, buf, logger); err != nil {
			logger.Fatal("live playback failed", "err", err)
		}
		return
	}

	f, err := os.Create(*outputFile)
	if err != nil {
		logger.Fatal("creating output file", "err", err)
	}
	defer f.Close()

	if err := wavio.Write(f, wavio.Format{SampleRate: uint32(cfg.SampleRate), Channels: 1}, buf); err != nil {
		logger.Fatal("writing wav file", "err", err)
	}
	logger.Info("wrote waveform", "file", *outputFile)
}

func parseLevel(s string) (frame.Level, error) {
	switch s {
	case "low":
		return frame.LevelLow, nil
	case "medium":
		return frame.LevelMedium, nil
	case "quality":
		return frame.LevelQuality, nil
	case "high":
		return frame.LevelHigh, nil
	default:
		return 0, fmt.Errorf("unknown ecc level %q", s)
	}
}

func playLive(sampleRate float64, deviceName string, samples []float32, logger *charmlog.Logger) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	device, err := resolveOutputDevice(deviceName)
	if err != nil {
		return err
	}
	logger.Info("playing live", "device", device.Name)

	const framesPerBuffer = 1024
	buf := make([]float32, framesPerBuffer)
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowOutputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: framesPerBuffer,
	}
	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return fmt.Errorf("opening output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting output stream: %w", err)
	}
	defer stream.Stop()

	for offset := 0; offset < len(samples); offset += framesPerBuffer {
		n := copy(buf, samples[offset:])
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("writing samples: %w", err)
		}
	}
	time.Sleep(50 * time.Millisecond)
	return nil
}

func resolveOutputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		return portaudio.DefaultOutputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing audio devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == name && d.MaxOutputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no output device named %q", name)
}
