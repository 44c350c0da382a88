package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/expiredhotdog/camonano/camo"
	"github.com/expiredhotdog/camonano/nano/client"
	"github.com/expiredhotdog/camonano/nano/client/websocket"
	"github.com/expiredhotdog/camonano/nano/crypto"
	"github.com/expiredhotdog/camonano/types"
	"github.com/expiredhotdog/camonano/utils"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: camotool <command> [flags]

commands:
  seed      generate a master seed and its mnemonic
  account   derive a camo account from a master seed
  viewkeys  export the view-only keypair blob for an account
  decode    inspect a camo address
  sendprep  compute the one-time destination and notification for a payment
  scan      detect camo payments with a view-only keypair
  watch     follow live confirmations on the notification account
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "seed":
		err = cmdSeed(os.Args[2:])
	case "account":
		err = cmdAccount(os.Args[2:])
	case "viewkeys":
		err = cmdViewKeys(os.Args[2:])
	case "decode":
		err = cmdDecode(os.Args[2:])
	case "sendprep":
		err = cmdSendPrep(os.Args[2:])
	case "scan":
		err = cmdScan(os.Args[2:])
	case "watch":
		err = cmdWatch(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		utils.Errorf("%s", err)
		os.Exit(1)
	}
}

func cmdSeed(args []string) error {
	flags := flag.NewFlagSet("seed", flag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}

	seed, err := crypto.NewRandomSeed()
	if err != nil {
		return err
	}
	defer seed.Zero()

	mnemonic, err := crypto.SeedToMnemonic(seed)
	if err != nil {
		return err
	}

	fmt.Printf("seed: %s\n", hex.EncodeToString(seed.Bytes()))
	fmt.Printf("mnemonic: %s\n", mnemonic)
	return nil
}

// readSeed accepts either a 64-character hex seed or a 24-word mnemonic.
func readSeed(s string) (*crypto.SecretBytes, error) {
	if strings.ContainsRune(s, ' ') {
		return crypto.SeedFromMnemonic(s)
	}
	buf, err := hex.DecodeString(s)
	if err != nil || len(buf) != crypto.SeedSize {
		return nil, fmt.Errorf("seed must be %d hex bytes or a mnemonic", crypto.SeedSize)
	}
	return crypto.NewSecretBytes(buf), nil
}

func deriveKeys(seed string, index uint) (*camo.Keys, error) {
	masterSeed, err := readSeed(seed)
	if err != nil {
		return nil, err
	}
	defer masterSeed.Zero()

	return camo.KeysFromSeed(masterSeed, uint32(index), camo.V1)
}

func cmdAccount(args []string) error {
	flags := flag.NewFlagSet("account", flag.ExitOnError)
	seedArg := flags.String("seed", "", "Master seed, hex or mnemonic")
	index := flags.Uint("index", 0, "Account index")
	if err := flags.Parse(args); err != nil {
		return err
	}

	keys, err := deriveKeys(*seedArg, *index)
	if err != nil {
		return err
	}
	defer keys.Zero()

	account := keys.ToAccount()
	fmt.Printf("camo address: %s\n", account)
	fmt.Printf("notification account: %s\n", account.NotificationAccount())
	return nil
}

func cmdViewKeys(args []string) error {
	flags := flag.NewFlagSet("viewkeys", flag.ExitOnError)
	seedArg := flags.String("seed", "", "Master seed, hex or mnemonic")
	index := flags.Uint("index", 0, "Account index")
	if err := flags.Parse(args); err != nil {
		return err
	}

	keys, err := deriveKeys(*seedArg, *index)
	if err != nil {
		return err
	}
	defer keys.Zero()

	viewKeys := keys.ToViewKeys()
	defer viewKeys.Zero()

	blob := viewKeys.Bytes()
	defer blob.Zero()

	fmt.Printf("view keys: %s\n", hex.EncodeToString(blob.Bytes()))
	return nil
}

func cmdDecode(args []string) error {
	flags := flag.NewFlagSet("decode", flag.ExitOnError)
	addressArg := flags.String("address", "", "Camo address to inspect")
	if err := flags.Parse(args); err != nil {
		return err
	}

	account, err := camo.AccountFromString(*addressArg)
	if err != nil {
		return err
	}

	fmt.Printf("versions: %08b\n", account.Versions().Encode())
	fmt.Printf("spend key: %s\n", hex.EncodeToString(account.SpendPub().Bytes()))
	fmt.Printf("view key: %s\n", hex.EncodeToString(account.ViewPub().Bytes()))
	fmt.Printf("notification account: %s\n", account.NotificationAccount())
	return nil
}

func cmdSendPrep(args []string) error {
	flags := flag.NewFlagSet("sendprep", flag.ExitOnError)
	addressArg := flags.String("address", "", "Recipient's camo address")
	keyArg := flags.String("key", "", "Sender's private key, 32 hex bytes")
	index := flags.Uint("index", 0, "Payment index, as the notification block will carry it")
	if err := flags.Parse(args); err != nil {
		return err
	}

	recipient, err := camo.AccountFromString(*addressArg)
	if err != nil {
		return err
	}

	keyBytes, err := hex.DecodeString(*keyArg)
	if err != nil || len(keyBytes) != crypto.SeedSize {
		return fmt.Errorf("key must be %d hex bytes", crypto.SeedSize)
	}
	senderKey := crypto.KeyFromScalar(crypto.NewScalarFromSecret(crypto.NewSecretBytes(keyBytes)))
	defer senderKey.Zero()

	destination, notification := recipient.SendPreparations(senderKey, uint32(*index))
	fmt.Printf("one-time destination: %s\n", destination)
	fmt.Printf("notification recipient: %s\n", notification.Recipient)
	fmt.Printf("notification representative: %s\n", notification.RepresentativePayload)
	return nil
}

func readViewKeys(blobArg string) (*camo.ViewKeys, error) {
	buf, err := hex.DecodeString(blobArg)
	if err != nil {
		return nil, err
	}
	blob := crypto.NewSecretBytes(buf)
	defer blob.Zero()

	return camo.ViewKeysFromBytes(blob)
}

func cmdScan(args []string) error {
	flags := flag.NewFlagSet("scan", flag.ExitOnError)
	node := flags.String("node", "http://localhost:7076", "Node RPC endpoint")
	blobArg := flags.String("viewkeys", "", "View keypair blob, hex")
	count := flags.Int("count", 50, "Blocks to inspect per source")
	history := flags.Bool("history", false, "Also walk the notification account's past blocks")
	verbose := flags.Bool("verbose", false, "Log skipped blocks")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *verbose {
		utils.EnableDebugLog()
	}

	viewKeys, err := readViewKeys(*blobArg)
	if err != nil {
		return err
	}
	defer viewKeys.Zero()

	c, err := client.NewClient(*node)
	if err != nil {
		return err
	}
	scanner := camo.NewScanner(c, viewKeys)
	ctx := context.Background()

	payments, err := scanner.ScanReceivables(ctx, *count)
	if err != nil {
		return err
	}
	if *history {
		past, err := scanner.ScanHistory(ctx, *count, types.ZeroHash)
		if err != nil {
			return err
		}
		payments = append(payments, past...)
	}

	if len(payments) == 0 {
		fmt.Println("no payments found")
		return nil
	}
	for _, p := range payments {
		fmt.Printf("payment from %s at index %d\n", p.Sender, p.Index)
		fmt.Printf("  one-time account: %s\n", p.OneTimeAccount)
		fmt.Printf("  notification block: %s\n", p.BlockHash)
	}
	return nil
}

func cmdWatch(args []string) error {
	flags := flag.NewFlagSet("watch", flag.ExitOnError)
	node := flags.String("node", "ws://localhost:7078", "Node websocket endpoint")
	rpc := flags.String("rpc", "http://localhost:7076", "Node RPC endpoint")
	blobArg := flags.String("viewkeys", "", "View keypair blob, hex")
	verbose := flags.Bool("verbose", false, "Log skipped events")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *verbose {
		utils.EnableDebugLog()
	}

	viewKeys, err := readViewKeys(*blobArg)
	if err != nil {
		return err
	}
	defer viewKeys.Zero()

	c, err := client.NewClient(*rpc)
	if err != nil {
		return err
	}
	scanner := camo.NewScanner(c, viewKeys)

	utils.Logf("watching %s", scanner.NotificationAccount())
	listener := websocket.NewClient(*node, scanner.NotificationAccount())
	listener.ListenWithReconnect(context.Background(), func(confirmation *websocket.Confirmation) {
		if payment, ok := scanner.DetectFromBlock(confirmation.Block); ok {
			utils.Noticef("payment from %s at index %d, one-time account %s, notified with %s raw",
				payment.Sender, payment.Index, payment.OneTimeAccount, confirmation.Amount)
		}
	})
	return nil
}
