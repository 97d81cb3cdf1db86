package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/example/delog/internal/engine"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v に失敗しました: %v\n%s", args, err, out)
	}
}

func fixtureRepo(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.name", "Tester")
	runGit(t, dir, "config", "user.email", "tester@example.com")
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatalf("mkdir に失敗しました: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "app.js"), []byte(source), 0o644); err != nil {
		t.Fatalf("ファイルの作成に失敗しました: %v", err)
	}
	runGit(t, dir, "add", ".")
	return dir
}

func TestAPIScanHandlerはドライランでファイルを書き換えない(t *testing.T) {
	t.Parallel()

	source := "console.log('boot');\nconst s = \"console.log('fake')\";\n"
	repoDir := fixtureRepo(t, source)

	handler := apiScanHandler(repoDir)
	req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("ステータスコードが一致しません: got=%d want=%d", rr.Code, http.StatusOK)
	}

	var res engine.Result
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("レスポンスのデコードに失敗しました: %v", err)
	}
	if !res.DryRun {
		t.Fatal("scan は常にドライランであるべきです")
	}
	if len(res.Items) != 1 {
		t.Fatalf("検出件数が1件ではありません: %+v", res.Items)
	}
	if res.Items[0].File != "src/app.js" || res.Items[0].Line != 1 {
		t.Fatalf("検出位置が期待値と異なります: %+v", res.Items[0])
	}
	if res.Items[0].Applied {
		t.Fatal("ドライランで applied になっています")
	}

	after, err := os.ReadFile(filepath.Join(repoDir, "src", "app.js"))
	if err != nil {
		t.Fatalf("ファイルの読み込みに失敗しました: %v", err)
	}
	if string(after) != source {
		t.Fatalf("scan がファイルを書き換えています: %q", after)
	}
}

func TestAPIApplyHandlerは削除を適用してバックアップを残す(t *testing.T) {
	t.Parallel()

	source := "console.log('boot');\nconst keep = 1;\n"
	repoDir := fixtureRepo(t, source)

	handler := apiApplyHandler(repoDir)
	req := httptest.NewRequest(http.MethodPost, "/api/apply", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("ステータスコードが一致しません: got=%d body=%s", rr.Code, rr.Body.String())
	}

	var res engine.Result
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("レスポンスのデコードに失敗しました: %v", err)
	}
	if res.DryRun {
		t.Fatal("apply はドライランであってはいけません")
	}
	if res.Removed != 1 || res.FilesChanged != 1 {
		t.Fatalf("削除件数が期待値と異なります: %+v", res)
	}
	if res.BackupSession == "" {
		t.Fatal("バックアップセッションが記録されていません")
	}

	after, err := os.ReadFile(filepath.Join(repoDir, "src", "app.js"))
	if err != nil {
		t.Fatalf("ファイルの読み込みに失敗しました: %v", err)
	}
	if string(after) != "const keep = 1;\n" {
		t.Fatalf("適用後の内容が期待値と異なります: %q", after)
	}

	backupPath := filepath.Join(repoDir, ".delog", "backups", res.BackupSession+".bak.msgpack")
	if _, err := os.Stat(backupPath); err != nil {
		t.Fatalf("バックアップファイルが見つかりません: %v", err)
	}
}

func TestAPIApplyHandlerはGETを拒否する(t *testing.T) {
	t.Parallel()

	handler := apiApplyHandler(t.TempDir())
	req := httptest.NewRequest(http.MethodGet, "/api/apply", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET は 405 であるべきです: got=%d", rr.Code)
	}
}

func TestAPIScanHandlerは不正なパラメータを400で返す(t *testing.T) {
	t.Parallel()

	handler := apiScanHandler(t.TempDir())
	req := httptest.NewRequest(http.MethodGet, "/api/scan?risky=maybe", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("不正な risky 値は 400 であるべきです: got=%d", rr.Code)
	}
}

func TestAPIScanHandlerはriskyな候補を適用対象から外す(t *testing.T) {
	t.Parallel()

	source := "const v = flag ? console.log('yes') : fallback();\n"
	repoDir := fixtureRepo(t, source)

	handler := apiApplyHandler(repoDir)
	req := httptest.NewRequest(http.MethodPost, "/api/apply", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("ステータスコードが一致しません: got=%d body=%s", rr.Code, rr.Body.String())
	}

	var res engine.Result
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("レスポンスのデコードに失敗しました: %v", err)
	}
	if res.SkippedRisky != 1 {
		t.Fatalf("risky のスキップ数が期待値と異なります: %+v", res)
	}

	after, err := os.ReadFile(filepath.Join(repoDir, "src", "app.js"))
	if err != nil {
		t.Fatalf("ファイルの読み込みに失敗しました: %v", err)
	}
	if string(after) != source {
		t.Fatalf("risky 指定なしで書き換えられています: %q", after)
	}

	// risky=1 を明示したときだけ undefined への置換が適用される。
	req = httptest.NewRequest(http.MethodPost, "/api/apply?risky=1", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("ステータスコードが一致しません: got=%d body=%s", rr.Code, rr.Body.String())
	}
	res = engine.Result{}
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("レスポンスのデコードに失敗しました: %v", err)
	}
	if res.Replaced != 1 {
		t.Fatalf("risky=1 で置換が適用されていません: %+v", res)
	}
	after, err = os.ReadFile(filepath.Join(repoDir, "src", "app.js"))
	if err != nil {
		t.Fatalf("ファイルの読み込みに失敗しました: %v", err)
	}
	if string(after) != "const v = flag ? undefined : fallback();\n" {
		t.Fatalf("置換後の内容が期待値と異なります: %q", after)
	}
}
