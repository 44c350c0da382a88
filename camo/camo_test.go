package camo

import (
	"strings"
	"testing"

	"github.com/expiredhotdog/camonano/nano/address"
	"github.com/expiredhotdog/camonano/nano/block"
	"github.com/expiredhotdog/camonano/nano/crypto"
	"github.com/expiredhotdog/camonano/types"
)

// publishedVector is a known-good camo address with version set {V1}.
const publishedVector = "camo_18wydi3gmaw4aefwhkijrjw4qd87i4tc85wbnij95gz4em3qssickhpoj9i4t6taqk46wdnie7aj8ijrjhtcdgsp3c1oqnahct3otygxx4k7f3o4"

func testSeed(tag string) *crypto.SecretBytes {
	sum := crypto.Blake2b256([]byte(tag))
	return crypto.NewSecretBytes(sum[:])
}

func testKeys(t *testing.T, tag string, index uint32) *Keys {
	t.Helper()
	seed := testSeed(tag)
	defer seed.Zero()
	keys, err := KeysFromSeed(seed, index, V1)
	if err != nil {
		t.Fatal(err)
	}
	return keys
}

func testSenderKey(tag string) *crypto.Key {
	seed := testSeed(tag)
	defer seed.Zero()
	return crypto.KeyFromScalar(crypto.NewScalarFromSecret(seed))
}

func TestVersions(t *testing.T) {
	if _, err := DecodeVersions(0); err != ErrUnrecognizedVersion {
		t.Errorf("expected rejection of empty version byte, got %v", err)
	}
	// bit 2 alone is a version this implementation cannot interpret
	if _, err := DecodeVersions(1 << 1); err != ErrUnrecognizedVersion {
		t.Errorf("expected rejection of unknown-only version byte, got %v", err)
	}

	// unknown bits survive alongside a recognized one
	v, err := DecodeVersions(1<<0 | 1<<1)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Has(V1) {
		t.Error("V1 bit lost")
	}
	if v.Encode() != 1<<0|1<<1 {
		t.Errorf("version byte did not round-trip: %08b", v.Encode())
	}
}

func TestKeyDerivationDeterminism(t *testing.T) {
	a := testKeys(t, "determinism", 7)
	b := testKeys(t, "determinism", 7)

	if !a.privateSpend.Equals(b.privateSpend) || !a.privateView.Equals(b.privateView) {
		t.Fatal("same seed and index produced different keys")
	}

	c := testKeys(t, "determinism", 8)
	if a.privateSpend.Equals(c.privateSpend) {
		t.Fatal("different indices produced the same spend scalar")
	}

	seed := testSeed("determinism")
	defer seed.Zero()
	if _, err := KeysFromSeed(seed, 0, Versions(1<<1)); err != ErrUnrecognizedVersion {
		t.Errorf("expected rejection of unsupported versions, got %v", err)
	}
}

func TestViewKeyConsistency(t *testing.T) {
	for _, index := range []uint32{0, 1, 77, 1 << 30} {
		keys := testKeys(t, "view-consistency", index)
		fromFull := keys.ToViewKeys()

		seed := testSeed("view-consistency")
		spendSeed := crypto.CamoSpendSeed(seed)
		masterSpend := crypto.AccountScalar(spendSeed, 0)
		viewSeed := crypto.CamoViewSeed(seed)

		independent, err := ViewKeysFromSeed(viewSeed, masterSpend.BaseMult(), index, V1)
		if err != nil {
			t.Fatal(err)
		}

		if independent.SpendPub().Equal(fromFull.SpendPub()) != 1 {
			t.Errorf("index %d: spend points diverge", index)
		}
		if !independent.privateView.Equals(fromFull.privateView) {
			t.Errorf("index %d: view scalars diverge", index)
		}
		if !independent.ToAccount().Equals(keys.ToAccount()) {
			t.Errorf("index %d: accounts diverge", index)
		}
	}
}

func TestECDHSymmetry(t *testing.T) {
	keys := testKeys(t, "ecdh", 0)
	account := keys.ToAccount()
	senderKey := testSenderKey("ecdh sender")
	senderAccount := address.FromPoint(senderKey.Public())

	senderSide := account.SenderECDH(senderKey)
	receiverSide := keys.ReceiverECDH(senderAccount)
	viewSide := keys.ToViewKeys().ReceiverECDH(senderAccount)

	if !senderSide.Equals(receiverSide) {
		t.Fatal("sender and receiver disagree on the shared secret")
	}
	if !senderSide.Equals(viewSide) {
		t.Fatal("view keys disagree on the shared secret")
	}
	if senderSide.Size() != crypto.SharedSecretSize {
		t.Fatalf("shared secret is %d bytes", senderSide.Size())
	}
}

func TestPaymentKeyAgreement(t *testing.T) {
	keys := testKeys(t, "agreement", 3)
	account := keys.ToAccount()
	viewKeys := keys.ToViewKeys()
	senderKey := testSenderKey("agreement sender")
	senderAccount := address.FromPoint(senderKey.Public())

	for _, index := range []uint32{0, 1, 42, 1<<32 - 1} {
		fromSender := account.DeriveAccount(senderKey, index)
		fromKeys := keys.DeriveKey(senderAccount, index)
		fromViewKeys := viewKeys.DeriveAccount(senderAccount, index)

		if !address.FromPoint(fromKeys.Public()).Equals(fromSender) {
			t.Errorf("index %d: recipient key does not match sender's account", index)
		}
		if !fromViewKeys.Equals(fromSender) {
			t.Errorf("index %d: view keys do not recognize the sender's account", index)
		}
	}
}

func TestDerivationFromBlock(t *testing.T) {
	keys := testKeys(t, "from-block", 0)
	account := keys.ToAccount()
	senderKey := testSenderKey("from-block sender")
	senderAccount := address.FromPoint(senderKey.Public())

	b := &block.Block{
		Type:           block.Send,
		Account:        senderAccount,
		Previous:       crypto.Blake2b256([]byte("previous")),
		Representative: senderAccount,
		Link:           types.Hash(account.NotificationAccount().PublicKeyBytes()),
	}
	index := StandardIndex(b)

	fromBlock := account.DeriveAccountFromBlock(b, senderKey)
	if !fromBlock.Equals(account.DeriveAccount(senderKey, index)) {
		t.Fatal("block-bound derivation ignored the standard index")
	}
	if !address.FromPoint(keys.DeriveKeyFromBlock(b).Public()).Equals(fromBlock) {
		t.Fatal("recipient cannot reproduce the block-bound account")
	}
	if !keys.ToViewKeys().DeriveAccountFromBlock(b).Equals(fromBlock) {
		t.Fatal("view keys cannot reproduce the block-bound account")
	}
}

func TestSendPreparations(t *testing.T) {
	keys := testKeys(t, "send-prep", 0)
	account := keys.ToAccount()
	senderKey := testSenderKey("send-prep sender")

	destination, notification := account.SendPreparations(senderKey, 15)

	if !notification.Recipient.Equals(account.NotificationAccount()) {
		t.Error("notification must pay the recipient's notification account")
	}
	if !notification.RepresentativePayload.Equals(address.FromPoint(senderKey.Public())) {
		t.Error("notification payload must be the sender's public account")
	}
	if !destination.Equals(account.DeriveAccount(senderKey, 15)) {
		t.Error("destination does not match direct derivation")
	}
}

func TestNotificationExtraction(t *testing.T) {
	sender := testSenderKey("notification sender")
	payload := testSenderKey("notification payload")
	b := &block.Block{
		Type:           block.Send,
		Account:        address.FromPoint(sender.Public()),
		Representative: address.FromPoint(payload.Public()),
	}

	notification := NotificationV1FromBlock(b)
	if !notification.Recipient.Equals(b.Account) {
		t.Error("recipient must come from the block's account field")
	}
	if !notification.RepresentativePayload.Equals(b.Representative) {
		t.Error("payload must come from the block's representative field")
	}
}

func TestAccountRoundTrip(t *testing.T) {
	account := testKeys(t, "round-trip", 2).ToAccount()

	s := account.String()
	if len(s) != AddressLength {
		t.Fatalf("address length %d", len(s))
	}
	if !strings.HasPrefix(s, AddressPrefix) {
		t.Fatalf("address %q lacks prefix", s)
	}

	decoded, err := AccountFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.Equals(account) {
		t.Fatal("decode(encode(account)) != account")
	}
	if decoded.SpendPub().Equal(account.SpendPub()) != 1 || decoded.ViewPub().Equal(account.ViewPub()) != 1 {
		t.Fatal("points did not survive the round-trip")
	}
}

func TestAccountLengthRejection(t *testing.T) {
	valid := testKeys(t, "length", 0).ToAccount().String()

	for _, s := range []string{
		"",
		"camo_",
		valid[:len(valid)-1],
		valid + "1",
		"nano_" + valid[len(AddressPrefix):],
	} {
		if _, err := AccountFromString(s); err != ErrInvalidAddressLength {
			t.Errorf("%q: expected length error, got %v", s, err)
		}
	}
}

func TestAccountChecksumRejection(t *testing.T) {
	valid := testKeys(t, "checksum", 0).ToAccount().String()

	// the trailing 8 characters carry exactly the 5 reversed checksum bytes
	for i := len(valid) - 8; i < len(valid); i++ {
		flipped := []byte(valid)
		if flipped[i] == '1' {
			flipped[i] = '3'
		} else {
			flipped[i] = '1'
		}
		if _, err := AccountFromString(string(flipped)); err != ErrInvalidAddressChecksum {
			t.Errorf("corrupting character %d: expected checksum error, got %v", i, err)
		}
	}
}

func TestPublishedVector(t *testing.T) {
	account, err := AccountFromString(publishedVector)
	if err != nil {
		t.Fatal(err)
	}
	if !account.Versions().Has(V1) {
		t.Fatalf("vector versions %08b lack V1", account.Versions().Encode())
	}

	reencoded := accountFromPoints(account.Versions(), account.SpendPub(), account.ViewPub())
	if reencoded.String() != publishedVector {
		t.Fatalf("re-encoded vector diverges:\n%s\n%s", reencoded, publishedVector)
	}
}

func TestViewKeysBlobRoundTrip(t *testing.T) {
	viewKeys := testKeys(t, "blob", 4).ToViewKeys()

	blob := viewKeys.Bytes()
	if blob.Size() != ViewKeysBlobSize {
		t.Fatalf("blob size %d", blob.Size())
	}

	decoded, err := ViewKeysFromBytes(blob)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.SpendPub().Equal(viewKeys.SpendPub()) != 1 {
		t.Fatal("spend point did not survive")
	}
	if !decoded.privateView.Equals(viewKeys.privateView) {
		t.Fatal("view scalar did not survive")
	}

	again := decoded.Bytes()
	defer again.Zero()
	if !again.Equals(viewKeys.Bytes()) {
		t.Fatal("blob did not round-trip byte for byte")
	}
}

func TestViewKeysBlobRejection(t *testing.T) {
	viewKeys := testKeys(t, "blob-reject", 0).ToViewKeys()
	reference := viewKeys.Bytes().Bytes()

	short := crypto.NewSecretBytes(append([]byte(nil), reference[:ViewKeysBlobSize-1]...))
	if _, err := ViewKeysFromBytes(short); err != ErrInvalidBlobLength {
		t.Errorf("expected blob length error, got %v", err)
	}

	noVersion := append([]byte(nil), reference...)
	noVersion[0] = 0
	if _, err := ViewKeysFromBytes(crypto.NewSecretBytes(noVersion)); err != ErrUnrecognizedVersion {
		t.Errorf("expected version error, got %v", err)
	}

	// 32 0xff bytes exceed the group order, so the scalar is non-canonical
	badScalar := append([]byte(nil), reference...)
	for i := 33; i < ViewKeysBlobSize; i++ {
		badScalar[i] = 0xff
	}
	if _, err := ViewKeysFromBytes(crypto.NewSecretBytes(badScalar)); err != ErrInvalidCurveScalar {
		t.Errorf("expected scalar error, got %v", err)
	}
}

func TestStandardIndex(t *testing.T) {
	b := &block.Block{}
	if StandardIndex(b) != 0 {
		t.Fatal("zero previous hash must map to index 0")
	}

	b.Previous[28] = 0x01
	b.Previous[31] = 0x02
	if got := StandardIndex(b); got != 0x01000002 {
		t.Fatalf("got index %#x", got)
	}
}

func TestDerivationCache(t *testing.T) {
	viewKeys := testKeys(t, "cache", 0).ToViewKeys()
	sender := address.FromPoint(testSenderKey("cache sender").Public())
	cache := NewDerivationCache()

	direct := viewKeys.DeriveAccount(sender, 9)
	if !cache.DerivedAccount(viewKeys, sender, 9).Equals(direct) {
		t.Fatal("cached derivation diverges from direct derivation")
	}
	if !cache.DerivedAccount(viewKeys, sender, 9).Equals(direct) {
		t.Fatal("cache hit diverges")
	}

	cache.Clear()
	if !cache.DerivedAccount(viewKeys, sender, 9).Equals(direct) {
		t.Fatal("post-clear derivation diverges")
	}
}

func TestAccountJSON(t *testing.T) {
	account := testKeys(t, "json", 0).ToAccount()

	buf, err := account.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	var decoded Account
	if err = decoded.UnmarshalJSON(buf); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equals(account) {
		t.Fatal("JSON round-trip diverged")
	}

	if err = decoded.UnmarshalJSON([]byte(`"camo_invalid"`)); err == nil {
		t.Fatal("expected rejection of malformed address")
	}
}
