package foldercrypt

import (
	"bytes"
	"testing"
)

// fastPBKDF2 keeps test runs quick; production defaults are much higher
var fastPBKDF2 = PBKDF2Params{Iterations: 1000}

// fastArgon2 keeps test runs quick; production defaults are much higher
var fastArgon2 = Argon2idParams{Memory: 64, Iterations: 1, Parallelism: 1}

func TestGenerateSalt(t *testing.T) {
	a, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}
	if len(a) != SaltSize {
		t.Errorf("Salt length = %d, want %d", len(a), SaltSize)
	}

	b, _ := GenerateSalt()
	if bytes.Equal(a, b) {
		t.Error("Two generated salts are identical")
	}
}

func TestKeyDeriver_Defaults(t *testing.T) {
	kd := NewPBKDF2KeyDeriver(PBKDF2Params{})
	if kd.pbkdf2Params.Iterations != DefaultPBKDF2Iterations {
		t.Errorf("PBKDF2 iterations = %d, want %d", kd.pbkdf2Params.Iterations, DefaultPBKDF2Iterations)
	}
	if kd.pbkdf2Params.KeySize != KeySize {
		t.Errorf("PBKDF2 key size = %d, want %d", kd.pbkdf2Params.KeySize, KeySize)
	}

	kd = NewArgon2idKeyDeriver(Argon2idParams{})
	if kd.argon2Params.Memory != DefaultArgon2Memory {
		t.Errorf("Argon2 memory = %d, want %d", kd.argon2Params.Memory, DefaultArgon2Memory)
	}
	if kd.argon2Params.Iterations != DefaultArgon2Iterations {
		t.Errorf("Argon2 iterations = %d, want %d", kd.argon2Params.Iterations, DefaultArgon2Iterations)
	}
	if kd.argon2Params.Parallelism != DefaultArgon2Parallelism {
		t.Errorf("Argon2 parallelism = %d, want %d", kd.argon2Params.Parallelism, DefaultArgon2Parallelism)
	}
}

func TestKeyDeriver_DeriveKey(t *testing.T) {
	salt, _ := GenerateSalt()

	derivers := map[string]*KeyDeriver{
		"pbkdf2":   NewPBKDF2KeyDeriver(fastPBKDF2),
		"argon2id": NewArgon2idKeyDeriver(fastArgon2),
	}

	for name, kd := range derivers {
		t.Run(name, func(t *testing.T) {
			key1, err := kd.DeriveKey("hunter2hunter2", salt)
			if err != nil {
				t.Fatalf("DeriveKey failed: %v", err)
			}
			if len(key1) != KeySize {
				t.Errorf("Key length = %d, want %d", len(key1), KeySize)
			}

			// Same inputs, same key
			key2, _ := kd.DeriveKey("hunter2hunter2", salt)
			if !bytes.Equal(key1, key2) {
				t.Error("Same password and salt derived different keys")
			}

			// Different password, different key
			key3, _ := kd.DeriveKey("hunter3hunter3", salt)
			if bytes.Equal(key1, key3) {
				t.Error("Different passwords derived the same key")
			}

			// Different salt, different key
			otherSalt, _ := GenerateSalt()
			key4, _ := kd.DeriveKey("hunter2hunter2", otherSalt)
			if bytes.Equal(key1, key4) {
				t.Error("Different salts derived the same key")
			}
		})
	}
}

func TestKeyDeriver_ModesDiffer(t *testing.T) {
	salt, _ := GenerateSalt()

	k1, _ := NewPBKDF2KeyDeriver(fastPBKDF2).DeriveKey("some password", salt)
	k2, _ := NewArgon2idKeyDeriver(fastArgon2).DeriveKey("some password", salt)

	if bytes.Equal(k1, k2) {
		t.Error("PBKDF2 and Argon2id derived the same key")
	}
}

func TestKeyDeriver_InvalidInputs(t *testing.T) {
	kd := NewPBKDF2KeyDeriver(fastPBKDF2)
	salt, _ := GenerateSalt()

	if _, err := kd.DeriveKey("", salt); !IsPasswordError(err) {
		t.Errorf("Empty password: err = %v, want PasswordError", err)
	}

	if _, err := kd.DeriveKey("password", salt[:16]); !IsFormatError(err) {
		t.Errorf("Short salt: err = %v, want FormatError", err)
	}

	if _, err := kd.DeriveKey("password", nil); !IsFormatError(err) {
		t.Errorf("Nil salt: err = %v, want FormatError", err)
	}
}

func TestScoreStrength(t *testing.T) {
	tests := []struct {
		password string
		wantOK   bool
		wantTier StrengthTier
	}{
		{"", false, StrengthVeryWeak},
		{"short", false, StrengthVeryWeak},
		{"1234567", false, StrengthVeryWeak},
		{"12345678", true, StrengthWeak},
		{"elevenchars", true, StrengthWeak},
		{"alllowercaseword", true, StrengthWeak},
		{"lowerUPPERcase", true, StrengthModerate},
		{"CorrectHorseBattery9", true, StrengthStrong},
		{"Tr0ub4dor&3xtra!", true, StrengthStrong},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			ok, tier := ScoreStrength(tt.password)
			if ok != tt.wantOK || tier != tt.wantTier {
				t.Errorf("ScoreStrength(%q) = (%v, %s), want (%v, %s)",
					tt.password, ok, tier, tt.wantOK, tt.wantTier)
			}
		})
	}
}

func TestZeroize(t *testing.T) {
	key := []byte{1, 2, 3, 4}
	Zeroize(key)
	for i, b := range key {
		if b != 0 {
			t.Errorf("key[%d] = %d after Zeroize, want 0", i, b)
		}
	}
}
