package sqlinline

const QInsertProductionJob = `--sql d0abe2f6-c049-4eea-a528-669619a5146d
insert into production_jobs (id, storyboard_id, status, progress, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6);
`

const QGetProductionJob = `--sql c1085971-2dbd-4406-b1d1-8336a305c7c1
select id, storyboard_id, status, progress,
       coalesce(output_path, '') as output_path,
       coalesce(error_message, '') as error_message,
       created_at, updated_at
from production_jobs
where id = $1;
`

const QUpdateProductionJob = `--sql 6a7bb09f-7677-485e-8754-bcfe3acdd1b7
update production_jobs
set status = $2,
    progress = $3,
    output_path = $4,
    error_message = $5,
    updated_at = $6
where id = $1;
`

const QClaimQueuedJob = `--sql ee3af484-e996-48df-98f2-96f078c0b80f
with next_job as (
    select id
    from production_jobs
    where status = 'pending'
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update production_jobs
    set status = 'matching', updated_at = now()
    where id in (select id from next_job)
    returning id, storyboard_id, status, progress, output_path, error_message, created_at, updated_at
)
select id, storyboard_id, status, progress,
       coalesce(output_path, '') as output_path,
       coalesce(error_message, '') as error_message,
       created_at, updated_at
from claimed;
`
