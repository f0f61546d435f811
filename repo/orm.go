package repo

import (
	"context"
	"reflect"

	"outreach/config"
	"outreach/entity"
	"outreach/pkg/goutil"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

type TxService interface {
	RunTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type BaseRepo interface {
	TxService

	Create(ctx context.Context, data interface{}) error
	CreateMany(ctx context.Context, model interface{}, data interface{}) error
	// CreateIgnoreConflicts inserts rows, silently skipping those that
	// collide on the given unique columns. Existing rows are left
	// untouched.
	CreateIgnoreConflicts(ctx context.Context, model interface{}, data interface{}, conflictColumns []string) error
	Get(ctx context.Context, model interface{}, f *Filter) error
	GetMany(ctx context.Context, model interface{}, f *Filter) ([]interface{}, *entity.Pagination, error)
	Count(ctx context.Context, model interface{}, f *Filter) (uint64, error)
	Update(ctx context.Context, model interface{}) error
	// UpdateColumns applies the given column values to all rows
	// matching f. Values may be gorm expressions, which is how counter
	// increments stay atomic.
	UpdateColumns(ctx context.Context, model interface{}, f *Filter, values map[string]interface{}) error
	BuildConditions(base, extra []*Condition) []*Condition
	Close(ctx context.Context) error
}

type baseRepo struct {
	db *gorm.DB
}

func NewBaseRepo(_ context.Context, mysqlCfg config.MySQL) (BaseRepo, error) {
	db, err := gorm.Open(mysql.Open(mysqlCfg.ToDSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return &baseRepo{
		db: db,
	}, nil
}

func (r *baseRepo) Create(ctx context.Context, data interface{}) error {
	return r.getDb(ctx).Create(data).Error
}

func (r *baseRepo) CreateMany(ctx context.Context, model interface{}, data interface{}) error {
	return r.getDb(ctx).Model(model).Create(data).Error
}

func (r *baseRepo) CreateIgnoreConflicts(ctx context.Context, model interface{}, data interface{}, conflictColumns []string) error {
	columns := make([]clause.Column, 0, len(conflictColumns))
	for _, c := range conflictColumns {
		columns = append(columns, clause.Column{Name: c})
	}

	return r.getDb(ctx).
		Model(model).
		Clauses(clause.OnConflict{
			Columns:   columns,
			DoNothing: true,
		}).
		Create(data).Error
}

func (r *baseRepo) Get(ctx context.Context, model interface{}, f *Filter) error {
	sqlQuery, args := ToSqlWithArgs(f)

	return r.getDb(ctx).Model(model).Where(sqlQuery, args...).First(model).Error
}

func (r *baseRepo) GetMany(ctx context.Context, model interface{}, f *Filter) ([]interface{}, *entity.Pagination, error) {
	var (
		db             = r.getDb(ctx)
		sqlQuery, args = ToSqlWithArgs(f)
		query          = db.Model(model).Where(sqlQuery, args...)
	)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, nil, err
	}

	pagination := f.Pagination
	if pagination == nil {
		pagination = new(entity.Pagination)
	}

	var (
		limit = pagination.GetLimit()
		page  = pagination.GetPage()
	)
	if page == 0 {
		page = 1
	}

	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "id DESC"
	}

	query = query.Offset(int((page - 1) * limit)).Order(orderBy)
	if limit > 0 {
		query = query.Limit(int(limit + 1))
	}

	var (
		modelElem = reflect.TypeOf(model).Elem()
		queryRes  = reflect.New(reflect.SliceOf(modelElem)).Interface()
	)
	if err := query.Find(queryRes).Error; err != nil {
		return nil, nil, err
	}

	var (
		resElem = reflect.ValueOf(queryRes).Elem()
		res     = make([]interface{}, resElem.Len())
	)
	for i := 0; i < resElem.Len(); i++ {
		res[i] = resElem.Index(i).Addr().Interface() // return addr
	}

	var hasNext bool
	if limit > 0 && len(res) > int(limit) {
		hasNext = true
		res = res[:limit]
	}

	return res, &entity.Pagination{
		Page:    goutil.Uint32(page),
		Limit:   pagination.Limit,
		HasNext: goutil.Bool(hasNext),
		Total:   goutil.Uint32(uint32(count)),
	}, nil
}

func (r *baseRepo) Count(ctx context.Context, model interface{}, f *Filter) (uint64, error) {
	sqlQuery, args := ToSqlWithArgs(f)

	var count int64
	if err := r.getDb(ctx).Model(model).Where(sqlQuery, args...).Count(&count).Error; err != nil {
		return 0, err
	}
	return uint64(count), nil
}

func (r *baseRepo) Update(ctx context.Context, model interface{}) error {
	return r.getDb(ctx).Updates(model).Error
}

func (r *baseRepo) UpdateColumns(ctx context.Context, model interface{}, f *Filter, values map[string]interface{}) error {
	sqlQuery, args := ToSqlWithArgs(f)

	return r.getDb(ctx).
		Model(model).
		Where(sqlQuery, args...).
		UpdateColumns(values).Error
}

func (r *baseRepo) BuildConditions(base, extra []*Condition) []*Condition {
	if len(base) == 0 {
		return extra
	}

	conditions := make([]*Condition, 0, len(base)+len(extra))
	conditions = append(conditions, base...)

	if len(extra) > 0 {
		last := *conditions[len(conditions)-1]
		last.NextLogicalOp = LogicalOpAnd
		conditions[len(conditions)-1] = &last
		conditions = append(conditions, extra...)
	}

	return conditions
}

func (r *baseRepo) RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.hasTx(ctx) {
		return fn(ctx)
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		ctxWithTx := context.WithValue(ctx, txKey{}, tx)
		if err := fn(ctxWithTx); err != nil {
			return err
		}
		return nil
	})
}

func (r *baseRepo) Close(_ context.Context) error {
	if r.db != nil {
		sqlDB, err := r.db.DB()
		if err != nil {
			return err
		}

		err = sqlDB.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepo) getDb(ctx context.Context) *gorm.DB {
	db, ok := ctx.Value(txKey{}).(*gorm.DB)
	if !ok {
		db = r.db
	}
	return db
}

func (r *baseRepo) hasTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}
