// Command carnet is the issuer CLI for AMPA membership cards: keypair
// management, token issuance, QR card generation, and revocation list upkeep.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ampa-nova/carnet/internal/batch"
	"github.com/ampa-nova/carnet/internal/card"
	"github.com/ampa-nova/carnet/internal/config"
	"github.com/ampa-nova/carnet/internal/issuer"
	"github.com/ampa-nova/carnet/internal/keycodec"
	"github.com/ampa-nova/carnet/internal/sigengine"
	"github.com/ampa-nova/carnet/internal/storage"
)

// ---- session defaults (non-secret, stored under the user config dir) ----

const (
	keyDefaultIssuer  = "issuer"
	keyDefaultBaseURL = "verify_base_url"
	keyDefaultRevList = "revocation_list"
)

var store storage.Store = storage.NewFileStore("")

// defaultFor reads a stored session default, falling back when unset. Private
// keys never go through the store; they live only where the operator
// explicitly writes them.
func defaultFor(key, fallback string) string {
	v, ok, err := store.Get(key)
	if err != nil || !ok || v == "" {
		return fallback
	}
	return v
}

// ---- utils ----

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeFileOrStdout(path string, data []byte, mode os.FileMode) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, mode)
}

func usage() {
	fmt.Fprintf(os.Stderr, `carnet CLI
Usage:
  carnet <cmd> [args]

Commands:
  version
  genkey       [-priv-out file] [-pub-out file]
  derive       -priv file [-pub-out file]
  fingerprint  -pub file [-n 8]
  issue        -priv file -name NAME -id MEMBER_ID -expiry DATE [-iss ISS] [-qr out.png] [-base-url URL]
  batch        -priv file -csv members.csv -out cards.zip [-iss ISS] [-base-url URL]
  inspect      -token JWT | -qr-text TEXT
  revoke       [-list revoked.json] -jti ID | -sub ID
  unrevoke     [-list revoked.json] -jti ID | -sub ID
  revoke-init  [-list revoked.json]
  revoke-merge [-list revoked.json] -in FILE_OR_URL
  check        [-list revoked.json] -jti ID [-sub ID]
  set-default  [-iss ISS] [-base-url URL] [-list PATH]
`)
	os.Exit(2)
}

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands.
func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	switch cmd {

	case "version":
		fmt.Printf("carnet %s (%s)\n", version, buildDate)

	case "genkey":
		fs := flag.NewFlagSet("genkey", flag.ExitOnError)
		privOut := fs.String("priv-out", "", "write private key PEM here (default: stdout for manual export)")
		pubOut := fs.String("pub-out", "", "write public key PEM here (default: stdout)")
		_ = fs.Parse(args)

		kp, err := sigengine.GenerateKeyPair()
		if err != nil {
			fail(err)
		}
		privPEM, err := keycodec.EncodePrivateKey(kp.PrivateKey)
		if err != nil {
			fail(err)
		}
		pubPEM, err := keycodec.EncodePublicKey(kp.PublicKey)
		if err != nil {
			fail(err)
		}
		if err := writeFileOrStdout(*privOut, []byte(privPEM+"\n"), 0o600); err != nil {
			fail(err)
		}
		if err := writeFileOrStdout(*pubOut, []byte(pubPEM+"\n"), 0o644); err != nil {
			fail(err)
		}
		fmt.Fprintf(os.Stderr, "fingerprint: %s\n", keycodec.Fingerprint(pubPEM, 8))

	case "derive":
		fs := flag.NewFlagSet("derive", flag.ExitOnError)
		privPath := fs.String("priv", "", "private key PEM file")
		pubOut := fs.String("pub-out", "", "write public key PEM here (default: stdout)")
		_ = fs.Parse(args)
		if *privPath == "" {
			fail(fmt.Errorf("need -priv"))
		}

		priv, err := loadPrivateKey(*privPath)
		if err != nil {
			fail(err)
		}
		pub, err := sigengine.PublicKeyFromSeed(priv)
		if err != nil {
			fail(err)
		}
		pubPEM, err := keycodec.EncodePublicKey(pub)
		if err != nil {
			fail(err)
		}
		if err := writeFileOrStdout(*pubOut, []byte(pubPEM+"\n"), 0o644); err != nil {
			fail(err)
		}

	case "fingerprint":
		fs := flag.NewFlagSet("fingerprint", flag.ExitOnError)
		pubPath := fs.String("pub", "", "public key PEM file")
		n := fs.Int("n", 8, "fingerprint length")
		_ = fs.Parse(args)
		if *pubPath == "" {
			fail(fmt.Errorf("need -pub"))
		}
		pem, err := os.ReadFile(*pubPath)
		if err != nil {
			fail(err)
		}
		fmt.Println(keycodec.Fingerprint(string(pem), *n))

	case "issue":
		cmdIssue(args)

	case "batch":
		cmdBatch(args)

	case "inspect":
		fs := flag.NewFlagSet("inspect", flag.ExitOnError)
		token := fs.String("token", "", "compact token")
		qrText := fs.String("qr-text", "", "raw QR content (URL or token)")
		_ = fs.Parse(args)

		raw := *token
		if raw == "" {
			raw = *qrText
		}
		if raw == "" {
			fail(fmt.Errorf("need -token or -qr-text"))
		}
		ids, err := card.ExtractIdentifiersFromQR(raw)
		if err != nil {
			fail(err)
		}
		printJSON(ids)

	case "revoke", "unrevoke", "revoke-init", "revoke-merge", "check":
		cmdRevocation(cmd, args)

	case "set-default":
		fs := flag.NewFlagSet("set-default", flag.ExitOnError)
		iss := fs.String("iss", "", "issuer identifier")
		baseURL := fs.String("base-url", "", "verification base URL")
		list := fs.String("list", "", "revocation list path")
		_ = fs.Parse(args)
		for key, val := range map[string]string{
			keyDefaultIssuer:  *iss,
			keyDefaultBaseURL: *baseURL,
			keyDefaultRevList: *list,
		} {
			if val == "" {
				continue
			}
			if err := store.Set(key, val); err != nil {
				fail(err)
			}
		}
		fmt.Println("ok")

	default:
		usage()
	}
}

func loadPrivateKey(path string) ([]byte, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !keycodec.IsValidPrivateKeyFormat(string(pem)) {
		return nil, fmt.Errorf("%s does not look like a PKCS#8 private key PEM", path)
	}
	return keycodec.DecodePrivateKey(string(pem))
}

func cmdIssue(args []string) {
	fs := flag.NewFlagSet("issue", flag.ExitOnError)
	privPath := fs.String("priv", "", "private key PEM file")
	name := fs.String("name", "", "member full name")
	memberID := fs.String("id", "", "member id")
	expiry := fs.String("expiry", "", "expiry date (e.g. 2026-06-30)")
	iss := fs.String("iss", defaultFor(keyDefaultIssuer, issuer.DefaultIssuer), "issuer identifier")
	qrOut := fs.String("qr", "", "also write a QR card PNG here")
	baseURL := fs.String("base-url", defaultFor(keyDefaultBaseURL, config.DefaultVerifyBaseURL), "verification base URL for the QR card")
	_ = fs.Parse(args)

	if *privPath == "" || *name == "" || *memberID == "" || *expiry == "" {
		fail(fmt.Errorf("need -priv, -name, -id, and -expiry"))
	}
	expiryDate := batch.ParseDateFlexible(*expiry)
	if expiryDate.IsZero() {
		fail(fmt.Errorf("invalid expiry %q: use YYYY-MM-DD, DD/MM/YYYY, or DD-MM-YYYY", *expiry))
	}
	if !expiryDate.After(time.Now()) {
		fail(fmt.Errorf("expiry date must be in the future"))
	}

	priv, err := loadPrivateKey(*privPath)
	if err != nil {
		fail(err)
	}
	iso := issuer.New(*iss, sigengine.New())
	payload, err := iso.CreatePayload(*name, *memberID, expiryDate)
	if err != nil {
		fail(err)
	}
	token, err := iso.Issue(payload, priv)
	if err != nil {
		fail(err)
	}
	fmt.Println(token)

	if *qrOut != "" {
		png, err := card.RenderPNG(*baseURL, token, 0)
		if err != nil {
			fail(err)
		}
		if err := os.WriteFile(*qrOut, png, 0o644); err != nil {
			fail(err)
		}
		fmt.Fprintf(os.Stderr, "card written to %s (jti %s)\n", *qrOut, payload.Jti)
	}
}

func cmdBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	privPath := fs.String("priv", "", "private key PEM file")
	csvPath := fs.String("csv", "", "member roster CSV (full_name,member_id,expiry_date)")
	outPath := fs.String("out", "cards.zip", "output ZIP path")
	iss := fs.String("iss", defaultFor(keyDefaultIssuer, issuer.DefaultIssuer), "issuer identifier")
	baseURL := fs.String("base-url", defaultFor(keyDefaultBaseURL, config.DefaultVerifyBaseURL), "verification base URL")
	_ = fs.Parse(args)

	if *privPath == "" || *csvPath == "" {
		fail(fmt.Errorf("need -priv and -csv"))
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	priv, err := loadPrivateKey(*privPath)
	if err != nil {
		fail(err)
	}
	f, err := os.Open(*csvPath)
	if err != nil {
		fail(err)
	}
	res, err := batch.ParseCSV(f)
	_ = f.Close()
	if err != nil {
		fail(err)
	}
	for _, re := range res.Errors {
		logger.Warn("row rejected", zap.Int("line", re.LineNumber), zap.String("reason", re.Message))
	}
	if len(res.Valid) == 0 {
		fail(fmt.Errorf("no valid rows in %s", *csvPath))
	}

	out, err := os.Create(*outPath)
	if err != nil {
		fail(err)
	}
	gen := &batch.Generator{Issuer: issuer.New(*iss, sigengine.New()), BaseURL: *baseURL}
	meta, err := gen.Generate(context.Background(), res.Valid, priv, func(current, total int) {
		logger.Info("card generated", zap.Int("current", current), zap.Int("total", total))
	}, out)
	if err != nil {
		_ = out.Close()
		fail(err)
	}
	if err := out.Close(); err != nil {
		fail(err)
	}
	logger.Info("batch complete",
		zap.String("zip", *outPath),
		zap.Int("cards", meta.TotalCards),
		zap.Int("rejected", len(res.Errors)),
		zap.String("school_year", meta.SchoolYear),
	)
}
