package google_auth

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestGoogleAuthVerifier_VerifyIDToken(t *testing.T) {
	// 從環境變數獲取測試用的token和clientID
	testIDToken := os.Getenv("TEST_GOOGLE_ID_TOKEN")
	clientID := os.Getenv("GOOGLE_CLIENT_ID")

	if testIDToken == "" || clientID == "" {
		t.Skip("TEST_GOOGLE_ID_TOKEN 或 GOOGLE_CLIENT_ID 環境變數未設置，跳過測試")
	}

	verifier := NewGoogleAuthVerifier(clientID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userInfo, err := verifier.VerifyIDToken(ctx, testIDToken)
	if err != nil {
		t.Fatalf("驗證 ID Token 失敗: %v", err)
	}

	if userInfo == nil {
		t.Fatal("驗證成功但未返回用戶信息")
	}

	if userInfo.Email == "" {
		t.Error("用戶信息中缺少 Email")
	}

	if userInfo.ID == "" {
		t.Error("用戶信息中缺少 ID")
	}

	t.Logf("驗證成功，用戶: %s (%s)", userInfo.Name, userInfo.Email)
}
