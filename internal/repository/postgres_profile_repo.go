package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/legadoapp/legado/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用した会員プロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

const profileColumns = `id,
	COALESCE(full_name, ''), COALESCE(vest_name, ''), birth_date,
	COALESCE(phone, ''), COALESCE(address_street, ''), COALESCE(city, ''),
	COALESCE(cep, ''), COALESCE(leader_name, ''), COALESCE(pastor_name, ''),
	member_since, baptized, role, created_at, updated_at`

// scanProfile は1行をProfileに読み取る。nullableな日付・三値はポインタに写す。
func scanProfile(row interface {
	Scan(dest ...any) error
}) (*model.Profile, error) {
	p := &model.Profile{}
	var (
		birthDate   sql.NullTime
		memberSince sql.NullTime
		baptized    sql.NullBool
		role        string
	)

	err := row.Scan(
		&p.ID,
		&p.FullName, &p.VestName, &birthDate,
		&p.Phone, &p.AddressStreet, &p.City,
		&p.CEP, &p.LeaderName, &p.PastorName,
		&memberSince, &baptized, &role, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if birthDate.Valid {
		t := birthDate.Time
		p.BirthDate = &t
	}
	if memberSince.Valid {
		t := memberSince.Time
		p.MemberSince = &t
	}
	if baptized.Valid {
		b := baptized.Bool
		p.Baptized = &b
	}
	p.Role = model.ParseRole(role)

	return p, nil
}

// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`,
		id,
	)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return p, nil
}

// Create は最小プロフィール行を作成する。
// 空文字のフィールドはNULLで保存する。
func (r *PostgresProfileRepo) Create(ctx context.Context, profile *model.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, full_name, vest_name, birth_date, phone,
		     address_street, city, cep, leader_name, pastor_name,
		     member_since, baptized, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		profile.ID,
		nullString(profile.FullName), nullString(profile.VestName), profile.BirthDate,
		nullString(profile.Phone), nullString(profile.AddressStreet), nullString(profile.City),
		nullString(profile.CEP), nullString(profile.LeaderName), nullString(profile.PastorName),
		profile.MemberSince, profile.Baptized, string(profile.Role),
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// Upsert はプロフィールの自己申告フィールドを作成または更新する。
// roleは更新対象外（既存行のroleを維持し、新規行はmemberで作成する）。
func (r *PostgresProfileRepo) Upsert(ctx context.Context, profile *model.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, full_name, vest_name, birth_date, phone,
		     address_street, city, cep, leader_name, pastor_name,
		     member_since, baptized, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'member', now(), now())
		 ON CONFLICT (id) DO UPDATE SET
		     full_name = EXCLUDED.full_name,
		     vest_name = EXCLUDED.vest_name,
		     birth_date = EXCLUDED.birth_date,
		     phone = EXCLUDED.phone,
		     address_street = EXCLUDED.address_street,
		     city = EXCLUDED.city,
		     cep = EXCLUDED.cep,
		     leader_name = EXCLUDED.leader_name,
		     pastor_name = EXCLUDED.pastor_name,
		     member_since = EXCLUDED.member_since,
		     baptized = EXCLUDED.baptized,
		     updated_at = now()`,
		profile.ID,
		nullString(profile.FullName), nullString(profile.VestName), profile.BirthDate,
		nullString(profile.Phone), nullString(profile.AddressStreet), nullString(profile.City),
		nullString(profile.CEP), nullString(profile.LeaderName), nullString(profile.PastorName),
		profile.MemberSince, profile.Baptized,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// UpdateRole は指定会員のロールを変更する。対象が存在しない場合はエラーを返す。
func (r *PostgresProfileRepo) UpdateRole(ctx context.Context, id string, role model.Role) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET role = $1, updated_at = now() WHERE id = $2`,
		string(role), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("profile not found: %s", id)
	}
	return nil
}

// ListRecent は作成日時の新しい順にプロフィールを取得する。
func (r *PostgresProfileRepo) ListRecent(ctx context.Context, limit int) ([]*model.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// ListAll は全プロフィールを取得する（レポート集計用）。
func (r *PostgresProfileRepo) ListAll(ctx context.Context) ([]*model.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func collectProfiles(rows *sql.Rows) ([]*model.Profile, error) {
	var profiles []*model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}

// nullString は空文字をNULLに写す。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
