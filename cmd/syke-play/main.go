package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/vsariola/syke"
	"github.com/vsariola/syke/oto"
	"github.com/vsariola/syke/portaudio"
	"github.com/vsariola/syke/seq"
	"github.com/vsariola/syke/version"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original track file is.")
	play := flag.Bool("p", false, "Play the input tracks (default behaviour when no other output is defined).")
	rawOut := flag.Bool("r", false, "Output the rendered track as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered track as .wav file. By default, saves stereo float32 buffer to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	loops := flag.Int("loops", 1, "Number of pattern cycles to render when outputting a composed track.")
	backend := flag.String("backend", "oto", "Audio backend used for playback: oto or portaudio.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*rawOut && !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	var sequencer *seq.Sequencer
	if *play {
		audioContext, err := newAudioContext(*backend)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire AudioContext: %v\n", err)
			os.Exit(1)
		}
		sequencer = seq.NewSequencer(audioContext)
	}
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	interrupted := false
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				os.Stdout.Write(contents)
				return nil
			}
			_, name := filepath.Split(filename)
			dir := *directory
			if dir == "" {
				var err error
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
				}
			}
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			f := filepath.Join(dir, name)
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		track, err := syke.ReadTrack(inputBytes)
		if err != nil {
			return err
		}
		if *rawOut || *wavOut {
			buffer, err := seq.RenderTrack(track, *loops)
			if err != nil {
				return fmt.Errorf("rendering failed: %v", err)
			}
			if *rawOut {
				raw, err := syke.Raw(buffer, *pcm)
				if err != nil {
					return fmt.Errorf("could not generate .raw file: %v", err)
				}
				if err := output(".raw", raw); err != nil {
					return fmt.Errorf("error outputting .raw file: %v", err)
				}
			}
			if *wavOut {
				wav, err := syke.Wav(buffer, *pcm)
				if err != nil {
					return fmt.Errorf("could not generate .wav file: %v", err)
				}
				if err := output(".wav", wav); err != nil {
					return fmt.Errorf("error outputting .wav file: %v", err)
				}
			}
		}
		if !*play {
			return nil
		}
		handle, err := sequencer.Play(track)
		if err != nil {
			return fmt.Errorf("could not play the track: %v", err)
		}
		for {
			select {
			case alert := <-handle.Alerts():
				fmt.Fprintln(os.Stderr, alert.Message)
			case <-sig:
				interrupted = true
				handle.Stop()
			case <-handle.Done():
				return nil
			}
		}
	}
	retval := 0
	for _, param := range flag.Args() {
		if interrupted {
			break
		}
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, err := filepath.Glob(filepath.Join(param, "*.json"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for json files: %v\n", param, err)
				retval = 1
				continue
			}
			ymlfiles, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			files := append(ymlfiles, jsonfiles...)
			for _, file := range files {
				if interrupted {
					break
				}
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			if err := process(param); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	if sequencer != nil {
		sequencer.Close()
	}
	os.Exit(retval)
}

func newAudioContext(backend string) (syke.AudioContext, error) {
	switch backend {
	case "oto":
		return oto.NewContext()
	case "portaudio":
		return portaudio.NewContext()
	}
	return nil, fmt.Errorf("unknown backend %q (use oto or portaudio)", backend)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Syke command line utility for playing and rendering .yml/.json track files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
