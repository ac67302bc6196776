// Command voicedoc is the client: it records or loads an audio clip, lets
// the user review it, obtains a transcription and translation, and manages
// the saved documents through the REST API.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"voicedoc/internal/ai"
	"voicedoc/internal/apiclient"
	"voicedoc/internal/capture"
	"voicedoc/internal/logger"
	"voicedoc/internal/model"
	"voicedoc/internal/transport"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOr("VOICEDOC_SERVER", "http://localhost:8080"), "backend base URL")
	owner := flag.String("owner", os.Getenv("VOICEDOC_OWNER"), "owner id stored on created documents")
	token := flag.String("token", os.Getenv("VOICEDOC_TOKEN"), "bearer token for the per-user listing")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	log := logger.New(true)
	client := apiclient.New(*server, *token)
	ctx := context.Background()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "record":
		err = runCapture(ctx, client, *owner, nil)
	case "load":
		if flag.NArg() < 2 {
			err = fmt.Errorf("usage: voicedoc load <audio-file>")
			break
		}
		var data []byte
		if data, err = os.ReadFile(flag.Arg(1)); err != nil {
			break
		}
		err = runCapture(ctx, client, *owner, data)
	case "list":
		err = runList(ctx, client, false)
	case "mine":
		err = runList(ctx, client, true)
	case "show":
		err = runShow(ctx, client, flag.Arg(1))
	case "play":
		err = runPlay(ctx, client, flag.Arg(1))
	case "rename":
		err = runRename(ctx, client, flag.Arg(1), flag.Arg(2))
	case "delete":
		err = runDelete(ctx, client, flag.Arg(1))
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: voicedoc [flags] <command>

Commands:
  record            record from the microphone, then transcribe and save
  load <file>       use an audio file instead of recording
  list              list all documents (id and name)
  mine              list your documents (needs -token)
  show <id>         print a document's fields
  play <id>         fetch and play a document's audio
  rename <id> <name>
  delete <id>       remove a document and its audio

Flags:`)
	flag.PrintDefaults()
}

// runCapture drives the full flow: produce a resource (microphone or file),
// review it, transcribe, translate, name, save.
func runCapture(ctx context.Context, client *apiclient.Client, owner string, fileData []byte) error {
	session, cleanup, err := newSession()
	if err != nil {
		return err
	}
	defer cleanup()
	defer session.Reset()

	if fileData != nil {
		if err := session.LoadFile(fileData); err != nil {
			return err
		}
	} else {
		if err := recordInteractive(session); err != nil {
			return err
		}
	}

	res := session.Resource()
	if res != nil && res.ContentType == "audio/wav" {
		if err := review(res); err != nil {
			fmt.Fprintf(os.Stderr, "playback unavailable: %v\n", err)
		}
	}

	provider, err := ai.NewOpenAI(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"))
	if err != nil {
		return err
	}

	filename := "clip.wav"
	if res.ContentType == "audio/mpeg" {
		filename = "clip.mp3"
	}
	fmt.Println("Transcribing...")
	transcription, err := provider.Transcribe(ctx, res.Data, filename)
	if err != nil {
		return err
	}
	fmt.Printf("Transcription: %s\n", transcription)

	language := prompt("Target language tag (e.g. es): ")
	fmt.Println("Translating...")
	translation, err := provider.Translate(ctx, transcription, language)
	if err != nil {
		return err
	}
	fmt.Printf("Translation: %s\n", translation)

	name := prompt("Document name: ")
	doc, err := client.Create(ctx, apiclient.CreateDocument{
		DocumentName:  name,
		Transcription: transcription,
		Translation:   translation,
		Language:      language,
		OwnerID:       owner,
		Audio:         res.Data,
		Filename:      filename,
		ContentType:   res.ContentType,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Saved document %s (%s)\n", doc.ID, doc.BlobKey)
	return nil
}

func newSession() (*capture.Session, func(), error) {
	audioCtx, err := capture.NewContext()
	if err != nil {
		return nil, nil, err
	}
	return capture.NewSession(audioCtx), audioCtx.Close, nil
}

func recordInteractive(session *capture.Session) error {
	if err := session.Start(); err != nil {
		return err
	}
	events, cancel := session.Subscribe()
	defer cancel()
	go func() {
		for e := range events {
			if e.Kind == capture.EventTick {
				fmt.Printf("\rRecording... %s", transport.FormatTime(float64(e.Elapsed)))
			}
		}
	}()

	fmt.Println("Press Enter to stop recording.")
	bufio.NewReader(os.Stdin).ReadString('\n')
	fmt.Println()
	return session.Stop()
}

// review plays the freshly captured resource once so the user can decide to
// keep it.
func review(res *capture.Resource) error {
	out, err := transport.NewOutputContext()
	if err != nil {
		return err
	}
	defer out.Close()

	ctrl := transport.NewController(out)
	if err := ctrl.Load(res); err != nil {
		return err
	}
	defer ctrl.Close()

	progress, cancel := ctrl.Subscribe()
	defer cancel()
	if err := ctrl.Play(); err != nil {
		return err
	}

	for p := range progress {
		fmt.Printf("\rPlaying %s / %s (%3.0f%%)",
			transport.FormatTime(p.Position.Seconds()),
			transport.FormatTime(p.Duration.Seconds()),
			p.Percent)
		if p.Percent >= 100 {
			break
		}
	}
	fmt.Println()
	return nil
}

func runList(ctx context.Context, client *apiclient.Client, mine bool) error {
	var summaries []model.DocumentSummary
	var err error
	if mine {
		summaries, err = client.ListMine(ctx)
	} else {
		summaries, err = client.List(ctx)
	}
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No documents.")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("%s  %s\n", s.ID, s.DocumentName)
	}
	return nil
}

func runShow(ctx context.Context, client *apiclient.Client, id string) error {
	if id == "" {
		return fmt.Errorf("usage: voicedoc show <id>")
	}
	doc, err := client.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Name:          %s\n", doc.DocumentName)
	fmt.Printf("Transcription: %s\n", doc.Transcription)
	fmt.Printf("Translation:   %s (%s)\n", doc.Translation, doc.Language)
	fmt.Printf("Audio:         %s\n", doc.BlobURL)
	fmt.Printf("Created:       %s\n", doc.CreatedAt.Format(time.RFC3339))
	return nil
}

func runPlay(ctx context.Context, client *apiclient.Client, id string) error {
	if id == "" {
		return fmt.Errorf("usage: voicedoc play <id>")
	}
	doc, err := client.Get(ctx, id)
	if err != nil {
		return err
	}
	data, err := client.FetchBlob(ctx, doc.BlobURL)
	if err != nil {
		return err
	}
	return review(&capture.Resource{Data: data, ContentType: "audio/wav"})
}

func runRename(ctx context.Context, client *apiclient.Client, id, name string) error {
	if id == "" || name == "" {
		return fmt.Errorf("usage: voicedoc rename <id> <name>")
	}
	doc, err := client.Update(ctx, id, model.DocumentUpdate{DocumentName: &name})
	if err != nil {
		return err
	}
	fmt.Printf("Renamed %s to %q\n", doc.ID, doc.DocumentName)
	return nil
}

func runDelete(ctx context.Context, client *apiclient.Client, id string) error {
	if id == "" {
		return fmt.Errorf("usage: voicedoc delete <id>")
	}
	if err := client.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}

func prompt(label string) string {
	fmt.Print(label)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return trimNewline(line)
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
