package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"task-manager-api/internal/models"
)

// CachedTaskRepository はタスク一覧を所有者ごとに Redis へキャッシュします。
// 書き込みが成功したら所有者の世代を進めてキーを破棄します。一覧の保存は読み込み前の世代と
// 一致する場合だけ行うので、並行する書き込みより古い一覧が残ることはありません。
// Redis の障害時は元のリポジトリにフォールバックします。
type CachedTaskRepository struct {
	base  TaskRepository
	redis *redis.Client
	ttl   time.Duration
	log   logrus.FieldLogger
}

// NewCachedTaskRepository は base をラップしたキャッシュ付きリポジトリを作成します。
// client が nil の場合はキャッシュせずに base へ委譲します。
func NewCachedTaskRepository(base TaskRepository, client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedTaskRepository {
	if base == nil {
		panic("repositories.NewCachedTaskRepository: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedTaskRepository{base: base, redis: client, ttl: ttl, log: log}
}

var errStaleGeneration = errors.New("task cache generation changed")

func tasksCacheKey(owner int64) string {
	return "tasks:user:" + strconv.FormatInt(owner, 10)
}

// tasksGenerationKey は owner の書き込み回数を数えるキーです。期限は付けません。
func tasksGenerationKey(owner int64) string {
	return "tasks:user:" + strconv.FormatInt(owner, 10) + ":gen"
}

func (c *CachedTaskRepository) List(ctx context.Context, owner int64) ([]*models.Task, error) {
	if tasks, ok := c.load(ctx, owner); ok {
		return tasks, nil
	}
	gen, genOK := c.generation(ctx, owner)
	tasks, err := c.base.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	if genOK {
		c.store(ctx, owner, gen, tasks)
	}
	return tasks, nil
}

func (c *CachedTaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	created, err := c.base.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, t.OwnerID)
	return created, nil
}

func (c *CachedTaskRepository) Get(ctx context.Context, owner, id int64) (*models.Task, error) {
	return c.base.Get(ctx, owner, id)
}

func (c *CachedTaskRepository) Update(ctx context.Context, owner, id int64, patch models.TaskPatch) (*models.Task, error) {
	updated, err := c.base.Update(ctx, owner, id, patch)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, owner)
	return updated, nil
}

func (c *CachedTaskRepository) Delete(ctx context.Context, owner, id int64) error {
	if err := c.base.Delete(ctx, owner, id); err != nil {
		return err
	}
	c.evict(ctx, owner)
	return nil
}

// cachedTask は JSON に出さないフィールドも含めたキャッシュ用の表現です。
type cachedTask struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *CachedTaskRepository) load(ctx context.Context, owner int64) ([]*models.Task, bool) {
	if c.redis == nil || c.ttl == 0 {
		return nil, false
	}
	key := tasksCacheKey(owner)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).WithField("key", key).Warn("task cache read failed")
		}
		return nil, false
	}
	var cached []cachedTask
	if err := json.Unmarshal(data, &cached); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	tasks := make([]*models.Task, 0, len(cached))
	for _, ct := range cached {
		tasks = append(tasks, &models.Task{
			ID:          ct.ID,
			OwnerID:     ct.OwnerID,
			Title:       ct.Title,
			Description: ct.Description,
			Done:        ct.Done,
			CreatedAt:   ct.CreatedAt,
			UpdatedAt:   ct.UpdatedAt,
		})
	}
	return tasks, true
}

// generation は owner の現在の世代を返します。キャッシュが無効か Redis に届かない場合は false です。
func (c *CachedTaskRepository) generation(ctx context.Context, owner int64) (int64, bool) {
	if c.redis == nil || c.ttl == 0 {
		return 0, false
	}
	gen, err := c.redis.Get(ctx, tasksGenerationKey(owner)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		c.log.WithError(err).WithField("owner", owner).Warn("task cache generation read failed")
		return 0, false
	}
	return gen, true
}

// store は世代が gen のままであれば一覧を保存します。
// 世代の確認と保存の間に書き込みがあれば WATCH によりトランザクションは破棄されます。
func (c *CachedTaskRepository) store(ctx context.Context, owner, gen int64, tasks []*models.Task) {
	cached := make([]cachedTask, 0, len(tasks))
	for _, t := range tasks {
		cached = append(cached, cachedTask{
			ID:          t.ID,
			OwnerID:     t.OwnerID,
			Title:       t.Title,
			Description: t.Description,
			Done:        t.Done,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return
	}

	genKey := tasksGenerationKey(owner)
	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, tasksCacheKey(owner), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.log.WithField("owner", owner).Debug("task cache write skipped: concurrent update")
	default:
		c.log.WithError(err).Warn("task cache write failed")
	}
}

func (c *CachedTaskRepository) evict(ctx context.Context, owner int64) {
	if c.redis == nil {
		return
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, tasksGenerationKey(owner))
		pipe.Del(ctx, tasksCacheKey(owner))
		return nil
	})
	if err != nil {
		c.log.WithError(err).WithField("owner", owner).Warn("task cache eviction failed")
	}
}
