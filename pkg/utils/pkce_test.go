package utils

import "testing"

func TestGenerateRandomString(t *testing.T) {
	a, err := GenerateRandomString(64)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	b, err := GenerateRandomString(64)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}

	if len(a) != 64 || len(b) != 64 {
		t.Errorf("长度 = %d / %d, 期望 64", len(a), len(b))
	}
	if a == b {
		t.Error("两次生成不应相同")
	}
}

func TestGenerateCodeChallenge(t *testing.T) {
	// RFC 7636 附录 B 的标准向量
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	want := "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"

	if got := GenerateCodeChallenge(verifier); got != want {
		t.Errorf("challenge = %s, 期望 %s", got, want)
	}
}
