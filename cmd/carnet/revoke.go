package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ampa-nova/carnet/internal/revocation"
)

// loadOrEmptyList reads a revocation list file, starting fresh when the file
// does not exist yet.
func loadOrEmptyList(path string) (*revocation.List, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return revocation.Empty(), nil
	}
	if err != nil {
		return nil, err
	}
	return revocation.FromJSON(string(b))
}

func saveList(path string, list *revocation.List) error {
	text, err := revocation.ToJSON(list)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text+"\n"), 0o644)
}

// cmdRevocation handles the revocation list subcommands. Add/remove report
// "no change" when the operation was a no-op, which list identity makes cheap
// to detect.
func cmdRevocation(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	listPath := fs.String("list", defaultFor(keyDefaultRevList, "revoked.json"), "revocation list file")
	jti := fs.String("jti", "", "token id")
	sub := fs.String("sub", "", "member id")
	in := fs.String("in", "", "list to merge in (file path or URL)")
	_ = fs.Parse(args)

	switch cmd {

	case "revoke-init":
		if _, err := os.Stat(*listPath); err == nil {
			fail(fmt.Errorf("%s already exists", *listPath))
		}
		if err := saveList(*listPath, revocation.Empty()); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "revoke", "unrevoke":
		id, typ := *jti, revocation.TypeJti
		if id == "" {
			id, typ = *sub, revocation.TypeSub
		}
		if id == "" {
			fail(fmt.Errorf("need -jti or -sub"))
		}
		list, err := loadOrEmptyList(*listPath)
		if err != nil {
			fail(err)
		}
		next := list
		if cmd == "revoke" {
			next, err = revocation.Add(list, id, typ)
		} else {
			next, err = revocation.Remove(list, id, typ)
		}
		if err != nil {
			fail(err)
		}
		if next == list {
			fmt.Println("no change")
			return
		}
		if err := saveList(*listPath, next); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "revoke-merge":
		if *in == "" {
			fail(fmt.Errorf("need -in"))
		}
		base, err := loadOrEmptyList(*listPath)
		if err != nil {
			fail(err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		incoming, err := revocation.NewChecker(nil).Load(ctx, *in)
		if err != nil {
			fail(err)
		}
		merged, err := revocation.Merge(base, incoming)
		if err != nil {
			fail(err)
		}
		if merged == base {
			fmt.Println("no change")
			return
		}
		if err := saveList(*listPath, merged); err != nil {
			fail(err)
		}
		fmt.Printf("merged: %d jti, %d sub\n", len(merged.RevokedJti), len(merged.RevokedSub))

	case "check":
		if *jti == "" && *sub == "" {
			fail(fmt.Errorf("need -jti or -sub"))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res := revocation.NewChecker(nil).Check(ctx, *jti, *sub, *listPath)
		printJSON(res)
	}
}
