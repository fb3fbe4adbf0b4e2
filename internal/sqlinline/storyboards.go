// Package sqlinline holds every SQL statement the service runs. Each constant
// starts with a --sql marker line carrying a stable uuid; the runner logs the
// marker and the lint tool checks it, so production logs map one-to-one to
// statements here.
package sqlinline

const QInsertStoryboard = `--sql 57a8da2e-b500-4518-947c-0181a7535105
insert into storyboards (id, title, width, height, fps, scenes)
values ($1, $2, $3, $4, $5, $6::jsonb);
`

const QGetStoryboard = `--sql 552ae2a8-16f7-4dba-b1d7-dc0f7f1d8c7e
select id, title, width, height, fps, scenes
from storyboards
where id = $1;
`

const QUpdateStoryboardScenes = `--sql 8421626a-699e-4dee-87aa-dbd80bfe8c27
update storyboards
set scenes = $2::jsonb,
    updated_at = now()
where id = $1;
`
